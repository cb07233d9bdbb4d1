package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"contas/internal/domain/charge"
	"contas/internal/domain/chat"
	"contas/internal/shared/middleware"
)

// ChatHandler turns free-text purchase messages into card charges
type ChatHandler struct {
	parser  *chat.Parser
	charges *charge.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(parser *chat.Parser, charges *charge.Service) *ChatHandler {
	return &ChatHandler{parser: parser, charges: charges}
}

type ChatPurchaseRequest struct {
	Message    string  `json:"message"`
	CardID     string  `json:"cardId"`
	CategoryID *string `json:"categoryId"`
}

type ChatPurchaseResponse struct {
	Intent  *chat.PurchaseIntent `json:"intent"`
	Charges []*charge.Charge     `json:"charges"`
}

// HandlePurchase parses a message like "notebook 3600 em 10 vezes" and
// registers the purchase on the given card (POST /api/chat/purchase).
func (h *ChatHandler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChatPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CardID == "" {
		http.Error(w, "Card ID is required", http.StatusBadRequest)
		return
	}

	intent, err := h.parser.Parse(req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrNoAmount) {
			http.Error(w, "Could not find an amount in the message", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.charges.Create(r.Context(), charge.CreateParams{
		CardID:       req.CardID,
		UserID:       userID,
		Description:  intent.Description,
		Amount:       intent.Amount,
		Type:         intent.Type,
		Date:         intent.Date,
		Installments: intent.Installments,
		CategoryID:   req.CategoryID,
	})
	if err != nil {
		writeChargeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ChatPurchaseResponse{Intent: intent, Charges: created})
}

package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"contas/internal/domain/card"
	"contas/internal/shared/middleware"
)

// CardHandler exposes card CRUD over HTTP
type CardHandler struct {
	cards *card.Service
}

// NewCardHandler creates a new card handler
func NewCardHandler(cards *card.Service) *CardHandler {
	return &CardHandler{cards: cards}
}

type CreateCardRequest struct {
	Name       string  `json:"name"`
	Bank       string  `json:"bank"`
	Limit      float64 `json:"limit"`
	ClosingDay int     `json:"closingDay"`
	DueDay     int     `json:"dueDay"`
}

type UpdateCardRequest struct {
	Name       *string  `json:"name"`
	Bank       *string  `json:"bank"`
	Limit      *float64 `json:"limit"`
	ClosingDay *int     `json:"closingDay"`
	DueDay     *int     `json:"dueDay"`
}

// HandleCards handles the card collection (POST create, GET list)
func (h *CardHandler) HandleCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreateCard(w, r, userID)
	case http.MethodGet:
		h.handleListCards(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleCardByID handles operations on a single card (GET, PUT, DELETE)
func (h *CardHandler) HandleCardByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cardID := r.PathValue("id")
	if cardID == "" {
		http.Error(w, "Card ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetCard(w, r, userID, cardID)
	case http.MethodPut:
		h.handleUpdateCard(w, r, userID, cardID)
	case http.MethodDelete:
		h.handleDeleteCard(w, r, userID, cardID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CardHandler) handleCreateCard(w http.ResponseWriter, r *http.Request, userID int64) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.cards.CreateCard(r.Context(), card.CreateParams{
		UserID:     userID,
		Name:       req.Name,
		Bank:       req.Bank,
		Limit:      req.Limit,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (h *CardHandler) handleListCards(w http.ResponseWriter, r *http.Request, userID int64) {
	cards, err := h.cards.ListCards(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing cards for user %d: %v", userID, err)
		http.Error(w, "Failed to list cards", http.StatusInternalServerError)
		return
	}

	if cards == nil {
		cards = []*card.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *CardHandler) handleGetCard(w http.ResponseWriter, r *http.Request, userID int64, cardID string) {
	c, err := h.cards.GetCard(r.Context(), cardID, userID)
	if err != nil {
		writeCardError(w, cardID, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CardHandler) handleUpdateCard(w http.ResponseWriter, r *http.Request, userID int64, cardID string) {
	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.cards.UpdateCard(r.Context(), cardID, userID, card.UpdateParams{
		Name:       req.Name,
		Bank:       req.Bank,
		Limit:      req.Limit,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	})
	if err != nil {
		switch {
		case errors.Is(err, card.ErrCardNotFound), errors.Is(err, card.ErrForbidden):
			writeCardError(w, cardID, err)
		case errors.Is(err, card.ErrInvalidLimit), errors.Is(err, card.ErrInvalidCycleDay):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error updating card %s: %v", cardID, err)
			http.Error(w, "Failed to update card", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CardHandler) handleDeleteCard(w http.ResponseWriter, r *http.Request, userID int64, cardID string) {
	if err := h.cards.DeleteCard(r.Context(), cardID, userID); err != nil {
		writeCardError(w, cardID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeCardError(w http.ResponseWriter, cardID string, err error) {
	switch {
	case errors.Is(err, card.ErrCardNotFound):
		http.Error(w, "Card not found", http.StatusNotFound)
	case errors.Is(err, card.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		log.Printf("Card %s error: %v", cardID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"contas/internal/domain/card"
	"contas/internal/domain/charge"
	"contas/internal/domain/invoice"
	"contas/internal/shared/middleware"
)

// ChargeHandler exposes the card charge lifecycle over HTTP
type ChargeHandler struct {
	charges *charge.Service
}

// NewChargeHandler creates a new charge handler
func NewChargeHandler(charges *charge.Service) *ChargeHandler {
	return &ChargeHandler{charges: charges}
}

type CreateChargeRequest struct {
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Type         string  `json:"type"`
	Date         string  `json:"date"` // YYYY-MM-DD
	Installments int     `json:"installments"`
	CategoryID   *string `json:"categoryId"`
}

type UpdateChargeRequest struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Type        *string  `json:"type"`
	Date        *string  `json:"date"` // YYYY-MM-DD
	CategoryID  *string  `json:"categoryId"`
}

// HandleCardCharges handles a card's charge collection (POST create, GET list)
func (h *ChargeHandler) HandleCardCharges(w http.ResponseWriter, r *http.Request) {
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
	case http.MethodPost:
		h.handleCreateCharge(w, r, userID, cardID)
	case http.MethodGet:
		h.handleListCharges(w, r, userID, cardID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ChargeHandler) handleCreateCharge(w http.ResponseWriter, r *http.Request, userID int64, cardID string) {
	var req CreateChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if req.Type == "" {
		req.Type = charge.TypeExpense
	}
	if req.Installments == 0 {
		req.Installments = 1
	}

	params := charge.CreateParams{
		CardID:       cardID,
		UserID:       userID,
		Description:  req.Description,
		Amount:       req.Amount,
		Type:         req.Type,
		Date:         date,
		Installments: req.Installments,
		CategoryID:   req.CategoryID,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.charges.Create(r.Context(), params)
	if err != nil {
		writeChargeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ChargeHandler) handleListCharges(w http.ResponseWriter, r *http.Request, userID int64, cardID string) {
	period, err := optionalPeriod(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	charges, err := h.charges.ListCharges(r.Context(), cardID, userID, period)
	if err != nil {
		writeChargeError(w, err)
		return
	}

	if charges == nil {
		charges = []*charge.Charge{}
	}
	writeJSON(w, http.StatusOK, charges)
}

// HandleChargeByID handles operations on a single charge (PUT, DELETE)
func (h *ChargeHandler) HandleChargeByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chargeID := r.PathValue("id")
	if chargeID == "" {
		http.Error(w, "Charge ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.handleUpdateCharge(w, r, userID, chargeID)
	case http.MethodDelete:
		h.handleDeleteCharge(w, r, userID, chargeID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ChargeHandler) handleUpdateCharge(w http.ResponseWriter, r *http.Request, userID int64, chargeID string) {
	var req UpdateChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := charge.UpdateParams{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		params.Date = &date
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.charges.Update(r.Context(), chargeID, userID, params)
	if err != nil {
		writeChargeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteCharge removes a charge. Deleting an already-absent charge
// still answers 204: the outcome the caller asked for holds either way.
func (h *ChargeHandler) handleDeleteCharge(w http.ResponseWriter, r *http.Request, userID int64, chargeID string) {
	if _, err := h.charges.Delete(r.Context(), chargeID, userID); err != nil {
		writeChargeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleInvoice returns the invoice summary for a card and period
// (GET /api/cards/{id}/invoice?year=&month=).
func (h *ChargeHandler) HandleInvoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

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

	period, err := requiredPeriod(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.charges.GetInvoice(r.Context(), cardID, userID, *period)
	if err != nil {
		writeChargeError(w, err)
		return
	}

	if summary.Charges == nil {
		summary.Charges = []*charge.Charge{}
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleInvoicePeriod resolves which invoice a purchase date falls on
// (GET /api/invoice-period?date=&closingDay=&dueDay=).
func (h *ChargeHandler) HandleInvoicePeriod(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	closingDay, err := strconv.Atoi(r.URL.Query().Get("closingDay"))
	if err != nil || closingDay < 1 || closingDay > 31 {
		http.Error(w, "closingDay must be between 1 and 31", http.StatusBadRequest)
		return
	}
	dueDay, err := strconv.Atoi(r.URL.Query().Get("dueDay"))
	if err != nil || dueDay < 1 || dueDay > 31 {
		http.Error(w, "dueDay must be between 1 and 31", http.StatusBadRequest)
		return
	}

	p := invoice.ResolvePeriod(date, closingDay, dueDay)
	writeJSON(w, http.StatusOK, map[string]any{
		"year":    p.Year,
		"month":   int(p.Month),
		"period":  p.String(),
		"dueDate": p.DueDate(dueDay).Format("2006-01-02"),
	})
}

func optionalPeriod(r *http.Request) (*invoice.Period, error) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")
	if yearStr == "" && monthStr == "" {
		return nil, nil
	}
	return parsePeriod(yearStr, monthStr)
}

func requiredPeriod(r *http.Request) (*invoice.Period, error) {
	return parsePeriod(r.URL.Query().Get("year"), r.URL.Query().Get("month"))
}

func parsePeriod(yearStr, monthStr string) (*invoice.Period, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 {
		return nil, errors.New("valid year is required")
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return nil, errors.New("month must be between 1 and 12")
	}
	return &invoice.Period{Year: year, Month: time.Month(month)}, nil
}

func writeChargeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, card.ErrCardNotFound):
		http.Error(w, "Card not found", http.StatusNotFound)
	case errors.Is(err, charge.ErrChargeNotFound):
		http.Error(w, "Charge not found", http.StatusNotFound)
	case errors.Is(err, card.ErrForbidden), errors.Is(err, charge.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, charge.ErrInvalidAmount),
		errors.Is(err, charge.ErrInvalidType),
		errors.Is(err, charge.ErrInvalidInstallments):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Charge operation error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

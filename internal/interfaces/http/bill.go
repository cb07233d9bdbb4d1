package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"contas/internal/domain/bill"
	"contas/internal/shared/middleware"
)

// BillHandler exposes bills and their payment flow over HTTP
type BillHandler struct {
	bills    *bill.Service
	payments *bill.PaymentService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(bills *bill.Service, payments *bill.PaymentService) *BillHandler {
	return &BillHandler{bills: bills, payments: payments}
}

type CreateBillRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"dueDate"` // YYYY-MM-DD
	Type        string  `json:"type"`
	CategoryID  *string `json:"categoryId"`
}

type UpdateBillRequest struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	DueDate     *string  `json:"dueDate"` // YYYY-MM-DD
	CategoryID  *string  `json:"categoryId"`
}

// HandleBills handles the bill collection (GET list by month, POST create)
func (h *BillHandler) HandleBills(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleListBills(w, r, userID)
	case http.MethodPost:
		h.handleCreateBill(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BillHandler) handleListBills(w http.ResponseWriter, r *http.Request, userID int64) {
	period, err := requiredPeriod(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bills, err := h.bills.ListBills(r.Context(), userID, period.Year, period.Month)
	if err != nil {
		log.Printf("Error listing bills for user %d: %v", userID, err)
		http.Error(w, "Failed to list bills", http.StatusInternalServerError)
		return
	}

	if bills == nil {
		bills = []*bill.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

func (h *BillHandler) handleCreateBill(w http.ResponseWriter, r *http.Request, userID int64) {
	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		http.Error(w, "Invalid due date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	b, err := h.bills.CreateBill(r.Context(), bill.CreateParams{
		UserID:      userID,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     dueDate,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

// HandleBillByID handles operations on a single bill (GET, PUT, DELETE)
func (h *BillHandler) HandleBillByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	billID := r.PathValue("id")
	if billID == "" {
		http.Error(w, "Bill ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetBill(w, r, userID, billID)
	case http.MethodPut:
		h.handleUpdateBill(w, r, userID, billID)
	case http.MethodDelete:
		h.handleDeleteBill(w, r, userID, billID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BillHandler) handleGetBill(w http.ResponseWriter, r *http.Request, userID int64, billID string) {
	b, err := h.bills.GetBill(r.Context(), billID, userID)
	if err != nil {
		writeBillError(w, billID, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func (h *BillHandler) handleUpdateBill(w http.ResponseWriter, r *http.Request, userID int64, billID string) {
	var req UpdateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := bill.UpdateParams{
		Description: req.Description,
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			http.Error(w, "Invalid due date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		params.DueDate = &dueDate
	}

	b, err := h.bills.UpdateBill(r.Context(), billID, userID, params)
	if err != nil {
		switch {
		case errors.Is(err, bill.ErrBillNotFound), errors.Is(err, bill.ErrForbidden):
			writeBillError(w, billID, err)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func (h *BillHandler) handleDeleteBill(w http.ResponseWriter, r *http.Request, userID int64, billID string) {
	if err := h.bills.DeleteBill(r.Context(), billID, userID); err != nil {
		switch {
		case errors.Is(err, bill.ErrBillNotFound), errors.Is(err, bill.ErrForbidden):
			writeBillError(w, billID, err)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandlePay marks a bill as paid (POST /api/bills/{id}/pay)
func (h *BillHandler) HandlePay(w http.ResponseWriter, r *http.Request) {
	h.handlePayment(w, r, h.payments.Pay)
}

// HandleUnpay reverts a bill to unpaid (POST /api/bills/{id}/unpay)
func (h *BillHandler) HandleUnpay(w http.ResponseWriter, r *http.Request) {
	h.handlePayment(w, r, h.payments.Unpay)
}

func (h *BillHandler) handlePayment(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, billID string, userID int64) (*bill.Bill, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	billID := r.PathValue("id")
	if billID == "" {
		http.Error(w, "Bill ID is required", http.StatusBadRequest)
		return
	}

	b, err := op(r.Context(), billID, userID)
	if err != nil {
		writeBillError(w, billID, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func writeBillError(w http.ResponseWriter, billID string, err error) {
	switch {
	case errors.Is(err, bill.ErrBillNotFound):
		http.Error(w, "Bill not found", http.StatusNotFound)
	case errors.Is(err, bill.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		log.Printf("Bill %s error: %v", billID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

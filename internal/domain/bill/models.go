package bill

import (
	"errors"
	"time"
)

// Bill types
const (
	TypePayable    = "PAYABLE"
	TypeReceivable = "RECEIVABLE"
)

var billTypes = map[string]struct{}{
	TypePayable:    {},
	TypeReceivable: {},
}

// Domain errors
var (
	ErrBillNotFound = errors.New("bill not found")
	ErrForbidden    = errors.New("access forbidden")
	ErrInvalidType  = errors.New("invalid bill type")
)

// Bill represents a payable or receivable with a due date. Credit card
// invoices are bills too: they carry the card ID and the invoice period they
// aggregate, and their amount is maintained by the invoice synchronizer
// rather than edited directly.
type Bill struct {
	ID           string     `json:"id"`
	UserID       int64      `json:"userId"`
	Description  string     `json:"description"`
	Amount       float64    `json:"amount"`
	DueDate      time.Time  `json:"dueDate"`
	Type         string     `json:"type"` // PAYABLE or RECEIVABLE
	IsPaid       bool       `json:"isPaid"`
	CategoryID   *string    `json:"categoryId,omitempty"`
	CardID       *string    `json:"cardId,omitempty"`
	InvoiceYear  *int       `json:"invoiceYear,omitempty"`
	InvoiceMonth *int       `json:"invoiceMonth,omitempty"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsInvoice reports whether this bill is a card invoice aggregate.
func (b *Bill) IsInvoice() bool {
	return b.CardID != nil
}

// CreateParams contains parameters for creating a new bill
type CreateParams struct {
	UserID       int64
	Description  string
	Amount       float64
	DueDate      time.Time
	Type         string
	CategoryID   *string
	CardID       *string
	InvoiceYear  *int
	InvoiceMonth *int
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Description == "" {
		return errors.New("description is required")
	}
	if p.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if p.DueDate.IsZero() {
		return errors.New("due date is required")
	}
	if !IsValidType(p.Type) {
		return ErrInvalidType
	}
	if p.CardID != nil && (p.InvoiceYear == nil || p.InvoiceMonth == nil) {
		return errors.New("invoice bills require an invoice period")
	}
	return nil
}

// UpdateParams contains parameters for updating a bill
type UpdateParams struct {
	Description *string
	Amount      *float64
	DueDate     *time.Time
	CategoryID  *string
	IsPaid      *bool
}

// IsValidType checks if the provided bill type is valid
func IsValidType(t string) bool {
	_, ok := billTypes[t]
	return ok
}

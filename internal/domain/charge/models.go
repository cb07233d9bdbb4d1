package charge

import (
	"errors"
	"math"
	"time"
)

// Charge types
const (
	TypeExpense = "EXPENSE"
	TypeIncome  = "INCOME"
)

var chargeTypes = map[string]struct{}{
	TypeExpense: {},
	TypeIncome:  {},
}

// Domain errors
var (
	ErrChargeNotFound      = errors.New("charge not found")
	ErrForbidden           = errors.New("access forbidden")
	ErrInvalidAmount       = errors.New("charge amount must be positive")
	ErrInvalidType         = errors.New("charge type must be EXPENSE or INCOME")
	ErrInvalidInstallments = errors.New("installments must be at least 1")
)

// Charge is a single card transaction bound to one invoice period. A
// purchase in N installments produces N charges sharing a PurchaseID, each
// on its own period.
type Charge struct {
	ID                string    `json:"id"`
	CardID            string    `json:"cardId"`
	UserID            int64     `json:"userId"`
	Description       string    `json:"description"`
	Amount            float64   `json:"amount"`
	Type              string    `json:"type"` // EXPENSE or INCOME
	Date              time.Time `json:"date"`
	InvoiceYear       int       `json:"invoiceYear"`
	InvoiceMonth      int       `json:"invoiceMonth"`
	InstallmentNumber int       `json:"installmentNumber"`
	InstallmentTotal  int       `json:"installmentTotal"`
	PurchaseID        string    `json:"purchaseId"`
	CategoryID        *string   `json:"categoryId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Signed returns the delta this charge applies to the card ledger and its
// invoice: positive for expenses, negative for incomes.
func (c *Charge) Signed() float64 {
	return Signed(c.Amount, c.Type)
}

// Signed converts an amount and charge type into a ledger delta.
func Signed(amount float64, chargeType string) float64 {
	if chargeType == TypeIncome {
		return -amount
	}
	return amount
}

// CreateParams contains parameters for creating a charge (the whole
// purchase; installments are expanded by the service).
type CreateParams struct {
	CardID       string
	UserID       int64
	Description  string
	Amount       float64
	Type         string
	Date         time.Time
	Installments int
	CategoryID   *string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.CardID == "" {
		return errors.New("card ID is required")
	}
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Description == "" {
		return errors.New("description is required")
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !IsValidType(p.Type) {
		return ErrInvalidType
	}
	if p.Date.IsZero() {
		return errors.New("charge date is required")
	}
	if p.Installments < 1 {
		return ErrInvalidInstallments
	}
	if p.Type == TypeIncome && p.Installments > 1 {
		return errors.New("incomes cannot be split into installments")
	}
	return nil
}

// UpdateParams contains parameters for updating a single charge. The
// installment layout of a purchase is fixed; to change it, delete the
// charges and create the purchase again.
type UpdateParams struct {
	Description *string
	Amount      *float64
	Type        *string
	Date        *time.Time
	CategoryID  *string
}

// Validate validates the update parameters
func (p UpdateParams) Validate() error {
	if p.Description != nil && *p.Description == "" {
		return errors.New("description cannot be empty")
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Type != nil && !IsValidType(*p.Type) {
		return ErrInvalidType
	}
	if p.Date != nil && p.Date.IsZero() {
		return errors.New("charge date cannot be zero")
	}
	return nil
}

// IsValidType checks if the provided charge type is valid
func IsValidType(t string) bool {
	_, ok := chargeTypes[t]
	return ok
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

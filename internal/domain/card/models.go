package card

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrCardNotFound    = errors.New("card not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidCycleDay = errors.New("closing and due day must be between 1 and 31")
	ErrInvalidLimit    = errors.New("card limit must be positive")
)

// Card represents a credit card and its credit ledger state. CurrentLimit is
// the credit still available: the configured Limit minus everything the open
// and future invoices are holding. It is mutated only through the ledger
// methods in ledger.go.
type Card struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"userId"`
	Name         string    `json:"name"`
	Bank         string    `json:"bank"`
	Limit        float64   `json:"limit"`
	CurrentLimit float64   `json:"currentLimit"`
	ClosingDay   int       `json:"closingDay"`
	DueDay       int       `json:"dueDay"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new card
type CreateParams struct {
	UserID     int64
	Name       string
	Bank       string
	Limit      float64
	ClosingDay int
	DueDay     int
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Name == "" {
		return errors.New("card name is required")
	}
	if p.Bank == "" {
		return errors.New("bank name is required")
	}
	if p.Limit <= 0 {
		return ErrInvalidLimit
	}
	if !isValidCycleDay(p.ClosingDay) || !isValidCycleDay(p.DueDay) {
		return ErrInvalidCycleDay
	}
	return nil
}

// UpdateParams contains parameters for updating a card
type UpdateParams struct {
	Name       *string
	Bank       *string
	Limit      *float64
	ClosingDay *int
	DueDay     *int
}

// Validate validates the update parameters
func (p UpdateParams) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return errors.New("card name cannot be empty")
	}
	if p.Bank != nil && *p.Bank == "" {
		return errors.New("bank name cannot be empty")
	}
	if p.Limit != nil && *p.Limit <= 0 {
		return ErrInvalidLimit
	}
	if p.ClosingDay != nil && !isValidCycleDay(*p.ClosingDay) {
		return ErrInvalidCycleDay
	}
	if p.DueDay != nil && !isValidCycleDay(*p.DueDay) {
		return ErrInvalidCycleDay
	}
	return nil
}

func isValidCycleDay(d int) bool {
	return d >= 1 && d <= 31
}

package category

import (
	"errors"
	"time"
)

// SystemCardInvoice is the reserved category that invoice bills are filed
// under. It is created lazily the first time a card generates an invoice.
const SystemCardInvoice = "Card Invoice"

// Domain errors
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrForbidden        = errors.New("access forbidden")
)

// Category classifies bills and card charges
type Category struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	IsSystem  bool      `json:"isSystem"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateParams contains parameters for creating a category
type CreateParams struct {
	UserID   int64
	Name     string
	IsSystem bool
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Name == "" {
		return errors.New("category name is required")
	}
	return nil
}

package card

import (
	"context"

	"contas/internal/domain/invoice"
)

// Repository defines the interface for card data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Card, error)
	GetByID(ctx context.Context, id string) (*Card, error)
	// GetForUpdate loads the card row under a write lock. Only meaningful
	// inside a unit of work; it serializes concurrent charge operations
	// against the same card.
	GetForUpdate(ctx context.Context, id string) (*Card, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Card, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Card, error)
	// SaveCurrentLimit persists the ledger state computed in memory.
	SaveCurrentLimit(ctx context.Context, id string, currentLimit float64) error
	Delete(ctx context.Context, id string) error
}

// UsageSource provides the signed ledger entries of a card from a given
// invoice period onward. Implemented by the charge repository.
type UsageSource interface {
	ListEntriesFromPeriod(ctx context.Context, cardID string, from invoice.Period) ([]LedgerEntry, error)
}

// UnitOfWork runs fn inside one database transaction. The repositories
// passed to fn are bound to that transaction, so a GetForUpdate inside fn
// holds the card row lock until fn returns. Every writer of CurrentLimit
// goes through a unit of work; otherwise a concurrent charge operation on
// the same card could be overwritten by a stale absolute write.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(cards Repository, usage UsageSource) error) error
}

package bill

import (
	"context"
	"time"
)

// Repository defines the interface for bill data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Bill, error)
	GetByID(ctx context.Context, id string) (*Bill, error)
	// GetByCardPeriod returns the invoice bill for a card and period, or
	// (nil, nil) when no invoice exists yet.
	GetByCardPeriod(ctx context.Context, cardID string, year int, month time.Month) (*Bill, error)
	ListByUserID(ctx context.Context, userID int64, year int, month time.Month) ([]*Bill, error)
	// ListUnpaidDueBefore returns unpaid bills across all users with a due
	// date up to and including the cutoff. Used by the due-bill notifier.
	ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]*Bill, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Bill, error)
	Delete(ctx context.Context, id string) error
}

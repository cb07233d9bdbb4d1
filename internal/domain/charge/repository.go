package charge

import (
	"context"
	"time"

	"contas/internal/domain/bill"
	"contas/internal/domain/card"
	"contas/internal/domain/category"
	"contas/internal/domain/invoice"
)

// CreateRecordParams contains the fully expanded parameters for persisting a
// single charge row (one installment).
type CreateRecordParams struct {
	CardID            string
	UserID            int64
	Description       string
	Amount            float64
	Type              string
	Date              time.Time
	Period            invoice.Period
	InstallmentNumber int
	InstallmentTotal  int
	PurchaseID        string
	CategoryID        *string
}

// Repository defines the interface for charge data access
type Repository interface {
	Create(ctx context.Context, params CreateRecordParams) (*Charge, error)
	GetByID(ctx context.Context, id string) (*Charge, error)
	ListByCard(ctx context.Context, cardID string) ([]*Charge, error)
	ListByCardPeriod(ctx context.Context, cardID string, p invoice.Period) ([]*Charge, error)
	ListByPurchase(ctx context.Context, purchaseID string) ([]*Charge, error)
	// ListEntriesFromPeriod implements card.UsageSource: the signed ledger
	// entries of a card from the given period onward.
	ListEntriesFromPeriod(ctx context.Context, cardID string, from invoice.Period) ([]card.LedgerEntry, error)
	Update(ctx context.Context, id string, params UpdateRecordParams) (*Charge, error)
	Delete(ctx context.Context, id string) error
}

// UpdateRecordParams contains the resolved fields persisted on update,
// including the re-resolved invoice period.
type UpdateRecordParams struct {
	Description string
	Amount      float64
	Type        string
	Date        time.Time
	Period      invoice.Period
	CategoryID  *string
}

// Repos bundles the repositories a lifecycle operation touches. Inside a
// unit of work they all share one database transaction.
type Repos struct {
	Cards      card.Repository
	Charges    Repository
	Bills      bill.Repository
	Categories category.Repository
}

// UnitOfWork runs a function against transaction-scoped repositories,
// committing when it returns nil and rolling back otherwise. Every charge
// lifecycle operation goes through it so the charge rows, the card ledger
// and the invoice bills move together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repos) error) error
}

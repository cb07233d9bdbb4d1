package card

import (
	"context"
	"errors"
	"testing"
	"time"

	"contas/internal/domain/invoice"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	CreateFunc           func(ctx context.Context, params CreateParams) (*Card, error)
	GetByIDFunc          func(ctx context.Context, id string) (*Card, error)
	GetForUpdateFunc     func(ctx context.Context, id string) (*Card, error)
	ListByUserIDFunc     func(ctx context.Context, userID int64) ([]*Card, error)
	UpdateFunc           func(ctx context.Context, id string, params UpdateParams) (*Card, error)
	SaveCurrentLimitFunc func(ctx context.Context, id string, currentLimit float64) error
	DeleteFunc           func(ctx context.Context, id string) error
}

func (m *MockRepository) Create(ctx context.Context, params CreateParams) (*Card, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Card, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepository) GetForUpdate(ctx context.Context, id string) (*Card, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepository) ListByUserID(ctx context.Context, userID int64) ([]*Card, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) Update(ctx context.Context, id string, params UpdateParams) (*Card, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *MockRepository) SaveCurrentLimit(ctx context.Context, id string, currentLimit float64) error {
	if m.SaveCurrentLimitFunc != nil {
		return m.SaveCurrentLimitFunc(ctx, id, currentLimit)
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockUsageSource is a mock implementation of UsageSource
type MockUsageSource struct {
	ListEntriesFromPeriodFunc func(ctx context.Context, cardID string, from invoice.Period) ([]LedgerEntry, error)
}

func (m *MockUsageSource) ListEntriesFromPeriod(ctx context.Context, cardID string, from invoice.Period) ([]LedgerEntry, error) {
	if m.ListEntriesFromPeriodFunc != nil {
		return m.ListEntriesFromPeriodFunc(ctx, cardID, from)
	}
	return nil, nil
}

// passthroughUoW runs the callback directly against the mocks, standing in
// for the transactional unit of work.
type passthroughUoW struct {
	cards Repository
	usage UsageSource
}

func (u passthroughUoW) Do(ctx context.Context, fn func(Repository, UsageSource) error) error {
	return fn(u.cards, u.usage)
}

// uowFunc adapts a function to the UnitOfWork interface
type uowFunc func(ctx context.Context, fn func(Repository, UsageSource) error) error

func (f uowFunc) Do(ctx context.Context, fn func(Repository, UsageSource) error) error {
	return f(ctx, fn)
}

func newTestService(repo Repository, usage UsageSource) *Service {
	return NewService(passthroughUoW{cards: repo, usage: usage}, repo)
}

func TestCreateCard(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{
			name: "Success",
			params: CreateParams{
				UserID:     1,
				Name:       "Platinum",
				Bank:       "Nubank",
				Limit:      5000,
				ClosingDay: 10,
				DueDay:     17,
			},
		},
		{
			name: "InvalidLimit",
			params: CreateParams{
				UserID:     1,
				Name:       "Platinum",
				Bank:       "Nubank",
				Limit:      0,
				ClosingDay: 10,
				DueDay:     17,
			},
			wantErr: ErrInvalidLimit,
		},
		{
			name: "InvalidClosingDay",
			params: CreateParams{
				UserID:     1,
				Name:       "Platinum",
				Bank:       "Nubank",
				Limit:      5000,
				ClosingDay: 32,
				DueDay:     17,
			},
			wantErr: ErrInvalidCycleDay,
		},
		{
			name: "InvalidDueDay",
			params: CreateParams{
				UserID:     1,
				Name:       "Platinum",
				Bank:       "Nubank",
				Limit:      5000,
				ClosingDay: 10,
				DueDay:     0,
			},
			wantErr: ErrInvalidCycleDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepository{
				CreateFunc: func(ctx context.Context, params CreateParams) (*Card, error) {
					return &Card{
						ID:           "card-1",
						UserID:       params.UserID,
						Name:         params.Name,
						Bank:         params.Bank,
						Limit:        params.Limit,
						CurrentLimit: params.Limit,
						ClosingDay:   params.ClosingDay,
						DueDay:       params.DueDay,
					}, nil
				},
			}
			svc := newTestService(repo, &MockUsageSource{})

			c, err := svc.CreateCard(ctx, tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.CurrentLimit != tt.params.Limit {
				t.Errorf("fresh card should have full limit available, got %.2f", c.CurrentLimit)
			}
		})
	}
}

func TestGetCardOwnership(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*Card, error) {
			if id == "card-1" {
				return &Card{ID: "card-1", UserID: 1}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo, &MockUsageSource{})

	if _, err := svc.GetCard(ctx, "card-1", 1); err != nil {
		t.Errorf("owner should see the card, got %v", err)
	}
	if _, err := svc.GetCard(ctx, "card-1", 2); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for other user, got %v", err)
	}
	if _, err := svc.GetCard(ctx, "missing", 1); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}

func TestUpdateCardRecalculatesLimit(t *testing.T) {
	ctx := context.Background()

	stored := &Card{
		ID:           "card-1",
		UserID:       1,
		Name:         "Platinum",
		Bank:         "Nubank",
		Limit:        1000,
		CurrentLimit: 600,
		ClosingDay:   10,
		DueDay:       17,
	}

	var savedLimit *float64
	repo := &MockRepository{
		GetForUpdateFunc: func(ctx context.Context, id string) (*Card, error) {
			cp := *stored
			return &cp, nil
		},
		UpdateFunc: func(ctx context.Context, id string, params UpdateParams) (*Card, error) {
			cp := *stored
			if params.Limit != nil {
				cp.Limit = *params.Limit
			}
			return &cp, nil
		},
		SaveCurrentLimitFunc: func(ctx context.Context, id string, currentLimit float64) error {
			savedLimit = &currentLimit
			return nil
		},
	}

	// Fixed clock: 2025-01-05, closing 10, due 17 resolves to 2025-01.
	// Entries: 400 in the current period, 100 in a past period.
	usage := &MockUsageSource{
		ListEntriesFromPeriodFunc: func(ctx context.Context, cardID string, from invoice.Period) ([]LedgerEntry, error) {
			if from != (invoice.Period{Year: 2025, Month: time.January}) {
				t.Errorf("recalculation should start at 2025-01, got %s", from)
			}
			return []LedgerEntry{
				{Amount: 400, Period: invoice.Period{Year: 2025, Month: time.January}},
				{Amount: 150, Period: invoice.Period{Year: 2025, Month: time.March}},
			}, nil
		},
	}

	svc := newTestService(repo, usage).WithClock(func() time.Time {
		return time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)
	})

	newLimit := 2000.0
	updated, err := svc.UpdateCard(ctx, "card-1", 1, UpdateParams{Limit: &newLimit})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.CurrentLimit != 1450 {
		t.Errorf("CurrentLimit = %.2f, want 1450 (2000 - 550)", updated.CurrentLimit)
	}
	if savedLimit == nil || *savedLimit != 1450 {
		t.Errorf("recalculated limit was not persisted, got %v", savedLimit)
	}
}

func TestUpdateCardNameOnlySkipsRecalculation(t *testing.T) {
	ctx := context.Background()

	repo := &MockRepository{
		GetForUpdateFunc: func(ctx context.Context, id string) (*Card, error) {
			return &Card{ID: "card-1", UserID: 1, Limit: 1000, CurrentLimit: 600, ClosingDay: 10, DueDay: 17}, nil
		},
		UpdateFunc: func(ctx context.Context, id string, params UpdateParams) (*Card, error) {
			return &Card{ID: "card-1", UserID: 1, Name: *params.Name, Limit: 1000, CurrentLimit: 600, ClosingDay: 10, DueDay: 17}, nil
		},
	}
	usage := &MockUsageSource{
		ListEntriesFromPeriodFunc: func(ctx context.Context, cardID string, from invoice.Period) ([]LedgerEntry, error) {
			t.Error("renaming a card must not touch the ledger")
			return nil, nil
		},
	}

	svc := newTestService(repo, usage)

	name := "Gold"
	updated, err := svc.UpdateCard(ctx, "card-1", 1, UpdateParams{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.CurrentLimit != 600 {
		t.Errorf("CurrentLimit should be untouched, got %.2f", updated.CurrentLimit)
	}
}

func TestInvoicePaymentFlow(t *testing.T) {
	ctx := context.Background()

	stored := &Card{ID: "card-1", UserID: 1, Limit: 1000, CurrentLimit: 400}
	var savedLimit float64
	repo := &MockRepository{
		GetForUpdateFunc: func(ctx context.Context, id string) (*Card, error) {
			cp := *stored
			return &cp, nil
		},
		SaveCurrentLimitFunc: func(ctx context.Context, id string, currentLimit float64) error {
			savedLimit = currentLimit
			return nil
		},
	}
	svc := newTestService(repo, &MockUsageSource{})

	// Paying a 300 invoice frees 300 of credit
	if err := svc.ApplyInvoicePayment(ctx, "card-1", 1, 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if savedLimit != 700 {
		t.Errorf("after payment: saved limit = %.2f, want 700", savedLimit)
	}

	// Reverting the payment holds it again
	if err := svc.RevertInvoicePayment(ctx, "card-1", 1, 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if savedLimit != 100 {
		t.Errorf("after revert: saved limit = %.2f, want 100", savedLimit)
	}

	// Other users cannot settle someone else's card
	if err := svc.ApplyInvoicePayment(ctx, "card-1", 2, 300); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestInvoicePaymentSeesCommittedCharges(t *testing.T) {
	ctx := context.Background()

	// A 200 expense commits through the charge lifecycle while the payment
	// waits for the card row lock. Once the lock is granted, the payment must
	// read the post-charge state, not the snapshot it would have seen before
	// the charge landed.
	stored := &Card{ID: "card-1", UserID: 1, Limit: 1000, CurrentLimit: 1000}
	var savedLimit float64
	repo := &MockRepository{
		GetForUpdateFunc: func(ctx context.Context, id string) (*Card, error) {
			cp := *stored
			return &cp, nil
		},
		SaveCurrentLimitFunc: func(ctx context.Context, id string, currentLimit float64) error {
			stored.CurrentLimit = currentLimit
			savedLimit = currentLimit
			return nil
		},
	}

	uow := uowFunc(func(ctx context.Context, fn func(Repository, UsageSource) error) error {
		stored.CurrentLimit = 800 // the concurrent charge commits first
		return fn(repo, &MockUsageSource{})
	})

	svc := NewService(uow, repo)
	if err := svc.ApplyInvoicePayment(ctx, "card-1", 1, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if savedLimit != 1300 {
		t.Errorf("saved limit = %.2f, want 1300 (800 after the charge + 500 released)", savedLimit)
	}
}

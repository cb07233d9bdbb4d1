package card

import (
	"context"
	"errors"
	"log"
	"time"

	"contas/internal/domain/invoice"
)

// Service contains the business logic for card operations
type Service struct {
	uow  UnitOfWork
	repo Repository
	now  func() time.Time
}

// NewService creates a new card service. Mutations of the available credit
// run through the unit of work, which also supplies the charge history for
// recalculation; plain reads go straight to the repository.
func NewService(uow UnitOfWork, repo Repository) *Service {
	return &Service{
		uow:  uow,
		repo: repo,
		now:  time.Now,
	}
}

// WithClock overrides the service clock. Used in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateCard creates a new card. A fresh card has its full limit available.
func (s *Service) CreateCard(ctx context.Context, params CreateParams) (*Card, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

// GetCard retrieves a card by ID and verifies user ownership
func (s *Service) GetCard(ctx context.Context, cardID string, userID int64) (*Card, error) {
	c, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCardNotFound
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}

	return c, nil
}

// ListCards retrieves all cards for a user
func (s *Service) ListCards(ctx context.Context, userID int64) ([]*Card, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}

	return s.repo.ListByUserID(ctx, userID)
}

// UpdateCard updates a card after verifying ownership. Changing the limit or
// the cycle days shifts which charges weigh on the available credit, so the
// ledger is rebuilt from the charge history. The whole update runs inside a
// unit of work holding the card row lock, serializing it against concurrent
// charge operations on the same card.
func (s *Service) UpdateCard(ctx context.Context, cardID string, userID int64, params UpdateParams) (*Card, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var updated *Card
	err := s.uow.Do(ctx, func(cards Repository, usage UsageSource) error {
		if _, err := lockCard(ctx, cards, cardID, userID); err != nil {
			return err
		}

		var err error
		updated, err = cards.Update(ctx, cardID, params)
		if err != nil {
			return err
		}

		if params.Limit == nil && params.ClosingDay == nil && params.DueDay == nil {
			return nil
		}

		current := invoice.ResolvePeriod(s.now(), updated.ClosingDay, updated.DueDay)
		entries, err := usage.ListEntriesFromPeriod(ctx, cardID, current)
		if err != nil {
			return err
		}

		updated.Recalculate(entries, current)
		if err := cards.SaveCurrentLimit(ctx, cardID, updated.CurrentLimit); err != nil {
			return err
		}

		log.Printf("Card %s ledger recalculated: limit=%.2f available=%.2f (period %s)",
			cardID, updated.Limit, updated.CurrentLimit, current)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteCard deletes a card after verifying ownership. Charges and invoice
// bills cascade at the storage layer.
func (s *Service) DeleteCard(ctx context.Context, cardID string, userID int64) error {
	if _, err := s.GetCard(ctx, cardID, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, cardID)
}

// ApplyInvoicePayment releases the credit an invoice was holding once its
// bill is paid. Part of the bill payment flow. Runs under the card row lock
// so the delta lands on the latest committed ledger state.
func (s *Service) ApplyInvoicePayment(ctx context.Context, cardID string, userID int64, amount float64) error {
	return s.uow.Do(ctx, func(cards Repository, _ UsageSource) error {
		c, err := lockCard(ctx, cards, cardID, userID)
		if err != nil {
			return err
		}

		c.RevertUsage(amount)
		return cards.SaveCurrentLimit(ctx, cardID, c.CurrentLimit)
	})
}

// RevertInvoicePayment takes back the credit released by a payment when the
// invoice bill is reverted to unpaid.
func (s *Service) RevertInvoicePayment(ctx context.Context, cardID string, userID int64, amount float64) error {
	return s.uow.Do(ctx, func(cards Repository, _ UsageSource) error {
		c, err := lockCard(ctx, cards, cardID, userID)
		if err != nil {
			return err
		}

		c.ApplyUsage(amount)
		return cards.SaveCurrentLimit(ctx, cardID, c.CurrentLimit)
	})
}

// lockCard loads the card under the unit of work's row lock and verifies
// ownership.
func lockCard(ctx context.Context, cards Repository, cardID string, userID int64) (*Card, error) {
	c, err := cards.GetForUpdate(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCardNotFound
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}

	return c, nil
}

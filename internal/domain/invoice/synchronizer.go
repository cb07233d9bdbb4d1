package invoice

import (
	"context"
	"fmt"
	"log"
	"math"

	"contas/internal/domain/bill"
	"contas/internal/domain/category"
)

// CardRef carries the card fields the synchronizer needs without depending
// on the card aggregate itself.
type CardRef struct {
	ID     string
	UserID int64
	Name   string
	DueDay int
}

// Synchronizer keeps the invoice bill of a card/period in step with the
// charges that land on it. Every ledger-affecting write flows through Upsert
// or Reverse, so the bill amount is always the sum of the signed charges and
// a changed invoice always goes back to unpaid.
type Synchronizer struct {
	bills      bill.Repository
	categories category.Repository
}

// NewSynchronizer creates a new invoice synchronizer over the given stores.
// Inside a charge lifecycle operation these are the transaction-scoped
// repositories of the unit of work.
func NewSynchronizer(bills bill.Repository, categories category.Repository) *Synchronizer {
	return &Synchronizer{bills: bills, categories: categories}
}

// Upsert folds a signed charge delta into the invoice of the given card and
// period, creating the invoice bill on first use. Expense deltas are
// positive, income deltas negative. An invoice never holds an amount at or
// below zero: a refund large enough to empty it deletes the bill, the same
// way a full reversal does.
func (s *Synchronizer) Upsert(ctx context.Context, card CardRef, p Period, delta float64) error {
	existing, err := s.bills.GetByCardPeriod(ctx, card.ID, p.Year, p.Month)
	if err != nil {
		return fmt.Errorf("failed to load invoice for card %s period %s: %w", card.ID, p, err)
	}

	if existing == nil {
		return s.create(ctx, card, p, delta)
	}

	amount := round2(existing.Amount + delta)
	if amount <= 0 {
		if err := s.bills.Delete(ctx, existing.ID); err != nil {
			return fmt.Errorf("failed to delete emptied invoice %s: %w", existing.ID, err)
		}
		return nil
	}

	paid := false
	_, err = s.bills.Update(ctx, existing.ID, bill.UpdateParams{
		Amount: &amount,
		IsPaid: &paid,
	})
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", existing.ID, err)
	}

	return nil
}

// Reverse removes a previously applied signed delta from the invoice of the
// given card and period. When the reversal empties the invoice, the bill is
// deleted. Reversing against a missing invoice is a no-op.
func (s *Synchronizer) Reverse(ctx context.Context, card CardRef, p Period, delta float64) error {
	existing, err := s.bills.GetByCardPeriod(ctx, card.ID, p.Year, p.Month)
	if err != nil {
		return fmt.Errorf("failed to load invoice for card %s period %s: %w", card.ID, p, err)
	}
	if existing == nil {
		log.Printf("Invoice reverse for card %s period %s: no invoice bill, skipping", card.ID, p)
		return nil
	}

	amount := round2(existing.Amount - delta)
	if amount <= 0 {
		if err := s.bills.Delete(ctx, existing.ID); err != nil {
			return fmt.Errorf("failed to delete empty invoice %s: %w", existing.ID, err)
		}
		return nil
	}

	paid := false
	_, err = s.bills.Update(ctx, existing.ID, bill.UpdateParams{
		Amount: &amount,
		IsPaid: &paid,
	})
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", existing.ID, err)
	}

	return nil
}

func (s *Synchronizer) create(ctx context.Context, card CardRef, p Period, delta float64) error {
	if delta <= 0 {
		// An income with no invoice to offset leaves nothing to create.
		log.Printf("Invoice upsert for card %s period %s: non-positive delta %.2f with no invoice, skipping", card.ID, p, delta)
		return nil
	}

	cat, err := s.categories.GetOrCreate(ctx, card.UserID, category.SystemCardInvoice, true)
	if err != nil {
		return fmt.Errorf("failed to resolve invoice category: %w", err)
	}

	year := p.Year
	month := int(p.Month)
	_, err = s.bills.Create(ctx, bill.CreateParams{
		UserID:       card.UserID,
		Description:  "Invoice " + card.Name,
		Amount:       round2(delta),
		DueDate:      p.DueDate(card.DueDay),
		Type:         bill.TypePayable,
		CategoryID:   &cat.ID,
		CardID:       &card.ID,
		InvoiceYear:  &year,
		InvoiceMonth: &month,
	})
	if err != nil {
		return fmt.Errorf("failed to create invoice bill for card %s period %s: %w", card.ID, p, err)
	}

	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

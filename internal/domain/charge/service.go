package charge

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"contas/internal/domain/bill"
	"contas/internal/domain/card"
	"contas/internal/domain/invoice"
)

// Service orchestrates the charge lifecycle. Every mutation runs inside the
// unit of work: the card row is locked, the charge rows are written, the
// card ledger is adjusted and the affected invoice bills are synchronized,
// all in one transaction.
type Service struct {
	uow UnitOfWork

	// Read-side repositories for queries outside a transaction.
	cards   card.Repository
	charges Repository
	bills   bill.Repository
}

// NewService creates a new charge service
func NewService(uow UnitOfWork, cards card.Repository, charges Repository, bills bill.Repository) *Service {
	return &Service{
		uow:     uow,
		cards:   cards,
		charges: charges,
		bills:   bills,
	}
}

// InvoiceSummary is the view of one card invoice: the charges on it, their
// recomputed total and the card's credit snapshot. The total always comes
// from the charges, never from the stored bill.
type InvoiceSummary struct {
	Card    *card.Card     `json:"card"`
	Period  invoice.Period `json:"period"`
	Total   float64        `json:"total"`
	IsPaid  bool           `json:"isPaid"`
	DueDate time.Time      `json:"dueDate"`
	Charges []*Charge      `json:"charges"`
}

// Create registers a purchase on a card, expanding installments. Each
// installment becomes its own charge on its own invoice period; the card
// ledger and every touched invoice bill are updated in the same
// transaction.
func (s *Service) Create(ctx context.Context, params CreateParams) ([]*Charge, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var created []*Charge
	err := s.uow.Do(ctx, func(r Repos) error {
		c, err := r.Cards.GetForUpdate(ctx, params.CardID)
		if err != nil {
			return err
		}
		if c == nil {
			return card.ErrCardNotFound
		}
		if c.UserID != params.UserID {
			return card.ErrForbidden
		}

		first := invoice.ResolvePeriod(params.Date, c.ClosingDay, c.DueDay)
		plan, err := BuildInstallmentPlan(params.Amount, params.Installments, params.Date, first)
		if err != nil {
			return err
		}

		sync := invoice.NewSynchronizer(r.Bills, r.Categories)
		ref := cardRef(c)
		purchaseID := uuid.NewString()

		for _, inst := range plan {
			row, err := r.Charges.Create(ctx, CreateRecordParams{
				CardID:            c.ID,
				UserID:            params.UserID,
				Description:       params.Description,
				Amount:            inst.Amount,
				Type:              params.Type,
				Date:              inst.Date,
				Period:            inst.Period,
				InstallmentNumber: inst.Number,
				InstallmentTotal:  params.Installments,
				PurchaseID:        purchaseID,
				CategoryID:        params.CategoryID,
			})
			if err != nil {
				return err
			}

			signed := Signed(inst.Amount, params.Type)
			c.ApplyUsage(signed)
			if err := sync.Upsert(ctx, ref, inst.Period, signed); err != nil {
				return err
			}

			created = append(created, row)
		}

		return r.Cards.SaveCurrentLimit(ctx, c.ID, c.CurrentLimit)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Purchase registered on card %s: %q %.2f in %d installment(s)",
		params.CardID, params.Description, params.Amount, params.Installments)

	return created, nil
}

// Update rewrites a single charge. The old charge's effect is fully reverted
// from the ledger and its invoice, then the new values are applied as if the
// charge were created fresh, re-resolving the period when the date moved.
func (s *Service) Update(ctx context.Context, chargeID string, userID int64, params UpdateParams) (*Charge, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var updated *Charge
	err := s.uow.Do(ctx, func(r Repos) error {
		existing, err := r.Charges.GetByID(ctx, chargeID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrChargeNotFound
		}
		if existing.UserID != userID {
			return ErrForbidden
		}

		c, err := r.Cards.GetForUpdate(ctx, existing.CardID)
		if err != nil {
			return err
		}
		if c == nil {
			return card.ErrCardNotFound
		}

		sync := invoice.NewSynchronizer(r.Bills, r.Categories)
		ref := cardRef(c)

		oldPeriod := periodOf(existing)
		oldSigned := existing.Signed()
		c.RevertUsage(oldSigned)
		if err := sync.Reverse(ctx, ref, oldPeriod, oldSigned); err != nil {
			return err
		}

		next := resolveUpdate(existing, params)
		newPeriod := oldPeriod
		if params.Date != nil {
			newPeriod = invoice.ResolvePeriod(next.Date, c.ClosingDay, c.DueDay)
		}
		next.Period = newPeriod

		newSigned := Signed(next.Amount, next.Type)
		c.ApplyUsage(newSigned)
		if err := sync.Upsert(ctx, ref, newPeriod, newSigned); err != nil {
			return err
		}

		updated, err = r.Charges.Update(ctx, chargeID, next)
		if err != nil {
			return err
		}

		return r.Cards.SaveCurrentLimit(ctx, c.ID, c.CurrentLimit)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a charge, reverting its effect on the card ledger and its
// invoice. Deleting a charge that does not exist is a no-op: it returns
// (false, nil) and writes nothing.
func (s *Service) Delete(ctx context.Context, chargeID string, userID int64) (bool, error) {
	deleted := false
	err := s.uow.Do(ctx, func(r Repos) error {
		existing, err := r.Charges.GetByID(ctx, chargeID)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		if existing.UserID != userID {
			return ErrForbidden
		}

		c, err := r.Cards.GetForUpdate(ctx, existing.CardID)
		if err != nil {
			return err
		}
		if c == nil {
			return card.ErrCardNotFound
		}

		sync := invoice.NewSynchronizer(r.Bills, r.Categories)

		signed := existing.Signed()
		c.RevertUsage(signed)
		if err := sync.Reverse(ctx, cardRef(c), periodOf(existing), signed); err != nil {
			return err
		}

		if err := r.Charges.Delete(ctx, chargeID); err != nil {
			return err
		}

		deleted = true
		return r.Cards.SaveCurrentLimit(ctx, c.ID, c.CurrentLimit)
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

// ListCharges returns a card's charges, optionally narrowed to one invoice
// period, after verifying ownership.
func (s *Service) ListCharges(ctx context.Context, cardID string, userID int64, period *invoice.Period) ([]*Charge, error) {
	if _, err := s.getOwnedCard(ctx, cardID, userID); err != nil {
		return nil, err
	}

	if period != nil {
		return s.charges.ListByCardPeriod(ctx, cardID, *period)
	}
	return s.charges.ListByCard(ctx, cardID)
}

// GetInvoice builds the invoice view for a card and period. The total is
// recomputed from the charges; the stored bill only contributes the paid
// flag.
func (s *Service) GetInvoice(ctx context.Context, cardID string, userID int64, p invoice.Period) (*InvoiceSummary, error) {
	c, err := s.getOwnedCard(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	charges, err := s.charges.ListByCardPeriod(ctx, cardID, p)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, ch := range charges {
		total += ch.Signed()
	}

	summary := &InvoiceSummary{
		Card:    c,
		Period:  p,
		Total:   round2(total),
		DueDate: p.DueDate(c.DueDay),
		Charges: charges,
	}

	b, err := s.bills.GetByCardPeriod(ctx, cardID, p.Year, p.Month)
	if err != nil {
		return nil, err
	}
	if b != nil {
		summary.IsPaid = b.IsPaid
		summary.DueDate = b.DueDate
	}

	return summary, nil
}

func (s *Service) getOwnedCard(ctx context.Context, cardID string, userID int64) (*card.Card, error) {
	if cardID == "" {
		return nil, errors.New("card ID is required")
	}

	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, card.ErrCardNotFound
	}
	if c.UserID != userID {
		return nil, card.ErrForbidden
	}

	return c, nil
}

func cardRef(c *card.Card) invoice.CardRef {
	return invoice.CardRef{
		ID:     c.ID,
		UserID: c.UserID,
		Name:   c.Name,
		DueDay: c.DueDay,
	}
}

func periodOf(c *Charge) invoice.Period {
	return invoice.Period{Year: c.InvoiceYear, Month: time.Month(c.InvoiceMonth)}
}

func resolveUpdate(existing *Charge, params UpdateParams) UpdateRecordParams {
	next := UpdateRecordParams{
		Description: existing.Description,
		Amount:      existing.Amount,
		Type:        existing.Type,
		Date:        existing.Date,
		CategoryID:  existing.CategoryID,
	}
	if params.Description != nil {
		next.Description = *params.Description
	}
	if params.Amount != nil {
		next.Amount = *params.Amount
	}
	if params.Type != nil {
		next.Type = *params.Type
	}
	if params.Date != nil {
		next.Date = *params.Date
	}
	if params.CategoryID != nil {
		next.CategoryID = params.CategoryID
	}
	return next
}

package bill

import (
	"context"
	"errors"
	"log"
)

// CardLedger is the slice of the card aggregate the payment flow needs.
// Paying a card invoice frees the credit it was holding; reverting a payment
// takes it back. Implemented by the card service.
type CardLedger interface {
	ApplyInvoicePayment(ctx context.Context, cardID string, userID int64, amount float64) error
	RevertInvoicePayment(ctx context.Context, cardID string, userID int64, amount float64) error
}

// PaymentService handles isPaid transitions for bills. Regular bills just
// flip the flag; invoice bills additionally settle against the card ledger.
type PaymentService struct {
	repo   Repository
	ledger CardLedger
}

// NewPaymentService creates a new bill payment service
func NewPaymentService(repo Repository, ledger CardLedger) *PaymentService {
	return &PaymentService{repo: repo, ledger: ledger}
}

// Pay marks a bill as paid. Paying an already-paid bill is a no-op.
func (s *PaymentService) Pay(ctx context.Context, billID string, userID int64) (*Bill, error) {
	b, err := s.getOwned(ctx, billID, userID)
	if err != nil {
		return nil, err
	}

	if b.IsPaid {
		return b, nil
	}

	if b.IsInvoice() && s.ledger != nil {
		if err := s.ledger.ApplyInvoicePayment(ctx, *b.CardID, userID, b.Amount); err != nil {
			return nil, err
		}
	}

	paid := true
	updated, err := s.repo.Update(ctx, billID, UpdateParams{IsPaid: &paid})
	if err != nil {
		return nil, err
	}

	log.Printf("Bill %s paid by user %d (amount=%.2f, invoice=%v)", billID, userID, b.Amount, b.IsInvoice())
	return updated, nil
}

// Unpay reverts a paid bill back to unpaid. For invoices the credit freed by
// the payment is held again.
func (s *PaymentService) Unpay(ctx context.Context, billID string, userID int64) (*Bill, error) {
	b, err := s.getOwned(ctx, billID, userID)
	if err != nil {
		return nil, err
	}

	if !b.IsPaid {
		return b, nil
	}

	if b.IsInvoice() && s.ledger != nil {
		if err := s.ledger.RevertInvoicePayment(ctx, *b.CardID, userID, b.Amount); err != nil {
			return nil, err
		}
	}

	paid := false
	updated, err := s.repo.Update(ctx, billID, UpdateParams{IsPaid: &paid})
	if err != nil {
		return nil, err
	}

	log.Printf("Bill %s reverted to unpaid by user %d", billID, userID)
	return updated, nil
}

func (s *PaymentService) getOwned(ctx context.Context, billID string, userID int64) (*Bill, error) {
	if billID == "" {
		return nil, errors.New("bill ID is required")
	}

	b, err := s.repo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBillNotFound
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}

	return b, nil
}

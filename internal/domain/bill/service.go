package bill

import (
	"context"
	"errors"
	"time"
)

// Service contains the business logic for bill operations
type Service struct {
	repo Repository
}

// NewService creates a new bill service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateBill creates a manual bill. Invoice bills are never created here;
// they are maintained by the invoice synchronizer.
func (s *Service) CreateBill(ctx context.Context, params CreateParams) (*Bill, error) {
	if params.CardID != nil {
		return nil, errors.New("invoice bills cannot be created directly")
	}
	if params.Type == "" {
		params.Type = TypePayable
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

// GetBill retrieves a bill by ID and verifies user ownership
func (s *Service) GetBill(ctx context.Context, billID string, userID int64) (*Bill, error) {
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

// ListBills retrieves all of a user's bills due in the given month
func (s *Service) ListBills(ctx context.Context, userID int64, year int, month time.Month) ([]*Bill, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}
	if year < 1 || month < time.January || month > time.December {
		return nil, errors.New("valid year and month are required")
	}

	return s.repo.ListByUserID(ctx, userID, year, month)
}

// UpdateBill updates a manual bill after verifying ownership. Amount and due
// date of invoice bills belong to the synchronizer and cannot be edited.
func (s *Service) UpdateBill(ctx context.Context, billID string, userID int64, params UpdateParams) (*Bill, error) {
	b, err := s.GetBill(ctx, billID, userID)
	if err != nil {
		return nil, err
	}

	if b.IsInvoice() && (params.Amount != nil || params.DueDate != nil) {
		return nil, errors.New("invoice amount and due date cannot be edited directly")
	}
	if params.Amount != nil && *params.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}

	return s.repo.Update(ctx, billID, params)
}

// DeleteBill deletes a manual bill after verifying ownership
func (s *Service) DeleteBill(ctx context.Context, billID string, userID int64) error {
	b, err := s.GetBill(ctx, billID, userID)
	if err != nil {
		return err
	}

	if b.IsInvoice() {
		return errors.New("invoice bills are removed by deleting their charges")
	}

	return s.repo.Delete(ctx, billID)
}

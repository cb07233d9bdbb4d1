package category

import (
	"context"
	"errors"
)

// Service contains the business logic for category operations
type Service struct {
	repo Repository
}

// NewService creates a new category service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateCategory creates a new user category
func (s *Service) CreateCategory(ctx context.Context, params CreateParams) (*Category, error) {
	// User-created categories are never system categories
	params.IsSystem = false

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, params)
}

// ListCategories retrieves all categories for a user
func (s *Service) ListCategories(ctx context.Context, userID int64) ([]*Category, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}

	return s.repo.ListByUserID(ctx, userID)
}

// DeleteCategory deletes a user category after verifying ownership.
// System categories cannot be deleted.
func (s *Service) DeleteCategory(ctx context.Context, categoryID string, userID int64) error {
	cat, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return ErrCategoryNotFound
	}
	if cat.UserID != userID {
		return ErrForbidden
	}
	if cat.IsSystem {
		return errors.New("system categories cannot be deleted")
	}

	return s.repo.Delete(ctx, categoryID)
}

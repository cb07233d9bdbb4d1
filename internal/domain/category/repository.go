package category

import "context"

// Repository defines the interface for category data access
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	// GetOrCreate returns the user's category with the given name, creating
	// it when missing. Used for system categories such as "Card Invoice".
	GetOrCreate(ctx context.Context, userID int64, name string, isSystem bool) (*Category, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Category, error)
	Delete(ctx context.Context, id string) error
}

package permission

import "context"

type Repository interface {
	// GetByUserAndModule returns the row for the pair, deleted or not, or nil.
	GetByUserAndModule(ctx context.Context, userID uint, moduleID string) (*Permission, error)
	// GetActiveByUserAndModule returns the authoritative row for the pair, or nil.
	GetActiveByUserAndModule(ctx context.Context, userID uint, moduleID string) (*Permission, error)
	// ListByUser returns every row of the user, deleted ones included.
	ListByUser(ctx context.Context, userID uint) ([]*Permission, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]*Permission, error)
	Create(ctx context.Context, permission *Permission) error
	Update(ctx context.Context, permission *Permission) error
}

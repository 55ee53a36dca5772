package user

import "context"

// Repository defines the interface for user data operations
type Repository interface {
	Create(ctx context.Context, user *User) error

	// GetByID returns nil when no user has the id
	GetByID(ctx context.Context, id uint) (*User, error)

	// GetByEmail returns nil when no user has the email
	GetByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	Exists(ctx context.Context, id uint) (bool, error)
}

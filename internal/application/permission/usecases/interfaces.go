package usecases

import "context"

// TransactionRunner runs fn inside one database transaction carried by ctx.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// GrantCacheInvalidator drops cached grant rows of a user after a write.
type GrantCacheInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, uint) error { return nil }

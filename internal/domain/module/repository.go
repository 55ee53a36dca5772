package module

import "context"

type Repository interface {
	Create(ctx context.Context, module *Module) error
	// GetByID returns nil when no module has the id. Deleted modules are returned.
	GetByID(ctx context.Context, id string) (*Module, error)
	// GetByTabURL only considers non-deleted modules.
	GetByTabURL(ctx context.Context, tabURL string) (*Module, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Module, error)
	// List returns modules ordered by number, then insertion order.
	List(ctx context.Context, filter Filter) ([]*Module, error)
	// ListForUpdate returns every module and, inside a transaction, holds
	// their rows until it ends. Re-parenting reads the hierarchy through it.
	ListForUpdate(ctx context.Context) ([]*Module, error)
	Update(ctx context.Context, module *Module) error
	ExistsByTabURL(ctx context.Context, tabURL string, excludeID string) (bool, error)
}

// Filter selects modules by lifecycle state and placement. Nil fields do not
// filter; there is no implicit exclusion of deleted modules.
type Filter struct {
	IsActive  *bool
	IsDeleted *bool
	ParentID  *string
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/domain/module"
	"bizdesk/internal/shared/db"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/logger"
)

func newModule(t *testing.T, id, tabURL string, number int, parentID string) *module.Module {
	t.Helper()
	m, err := module.NewModule(module.CreateParams{
		ID:           id,
		TabName:      id,
		TabURL:       tabURL,
		Number:       number,
		ParentID:     parentID,
		Capabilities: module.Capabilities{HasView: true},
		IsActive:     true,
	})
	require.NoError(t, err)
	return m
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func moduleIDs(ms []*module.Module) []string {
	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID())
	}
	return ids
}

func TestModuleRepository_CreateAndGet(t *testing.T) {
	repo := NewModuleRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	m := newModule(t, "mod_invoices", "/invoices", 2, "")
	require.NoError(t, repo.Create(ctx, m))
	assert.NotZero(t, m.Seq())

	found, err := repo.GetByID(ctx, "mod_invoices")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "/invoices", found.TabURL())
	assert.True(t, found.IsRoot())
	assert.True(t, found.IsActive())
	assert.Equal(t, m.Seq(), found.Seq())

	missing, err := repo.GetByID(ctx, "mod_missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.Create(ctx, newModule(t, "mod_invoices", "/other", 0, ""))
	assert.True(t, errors.IsConflictError(err))
}

func TestModuleRepository_ListOrderingAndFilters(t *testing.T) {
	repo := NewModuleRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	for _, m := range []*module.Module{
		newModule(t, "mod_stock", "/stock", 3, ""),
		newModule(t, "mod_taxes", "/taxes", 1, ""),
		newModule(t, "mod_accounts", "/accounts", 1, ""),
		newModule(t, "mod_ledger", "/ledger", 0, "mod_accounts"),
	} {
		require.NoError(t, repo.Create(ctx, m))
	}

	deleted, err := repo.GetByID(ctx, "mod_stock")
	require.NoError(t, err)
	require.NoError(t, deleted.MarkDeleted())
	require.NoError(t, repo.Update(ctx, deleted))

	all, err := repo.List(ctx, module.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"mod_ledger", "mod_taxes", "mod_accounts", "mod_stock"}, moduleIDs(all))

	live, err := repo.List(ctx, module.Filter{IsDeleted: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, []string{"mod_ledger", "mod_taxes", "mod_accounts"}, moduleIDs(live))

	gone, err := repo.List(ctx, module.Filter{IsDeleted: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"mod_stock"}, moduleIDs(gone))

	roots, err := repo.List(ctx, module.Filter{ParentID: strPtr(""), IsDeleted: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, []string{"mod_taxes", "mod_accounts"}, moduleIDs(roots))

	children, err := repo.List(ctx, module.Filter{ParentID: strPtr("mod_accounts")})
	require.NoError(t, err)
	assert.Equal(t, []string{"mod_ledger"}, moduleIDs(children))
}

func TestModuleRepository_TabURLLookups(t *testing.T) {
	repo := NewModuleRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	old := newModule(t, "mod_old", "/orders", 0, "")
	require.NoError(t, repo.Create(ctx, old))

	exists, err := repo.ExistsByTabURL(ctx, "/orders", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByTabURL(ctx, "/orders", "mod_old")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, old.MarkDeleted())
	require.NoError(t, repo.Update(ctx, old))

	exists, err = repo.ExistsByTabURL(ctx, "/orders", "")
	require.NoError(t, err)
	assert.False(t, exists, "deleted modules release their tab URL")

	found, err := repo.GetByTabURL(ctx, "/orders")
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, repo.Create(ctx, newModule(t, "mod_new", "/orders", 0, "")))
	found, err = repo.GetByTabURL(ctx, "/orders")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "mod_new", found.ID())
}

func TestModuleRepository_UpdateParent(t *testing.T) {
	repo := NewModuleRepository(setupTestDB(t), logger.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newModule(t, "mod_sales", "/sales", 0, "")))
	child := newModule(t, "mod_quotes", "/quotes", 0, "mod_sales")
	require.NoError(t, repo.Create(ctx, child))

	require.NoError(t, child.Apply(module.Patch{ParentID: strPtr("")}))
	require.NoError(t, repo.Update(ctx, child))

	found, err := repo.GetByID(ctx, "mod_quotes")
	require.NoError(t, err)
	assert.True(t, found.IsRoot())

	ghost := newModule(t, "mod_ghost", "/ghost", 0, "")
	assert.True(t, errors.IsNotFoundError(repo.Update(ctx, ghost)))

	byIDs, err := repo.GetByIDs(ctx, []string{"mod_quotes", "mod_sales", "mod_ghost"})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)
}

func TestModuleRepository_ListForUpdateInsideTransaction(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewModuleRepository(gdb, logger.NewNop())
	ctx := context.Background()

	root := newModule(t, "mod_root", "/root", 2, "")
	require.NoError(t, repo.Create(ctx, root))
	gone := newModule(t, "mod_gone", "/gone", 1, "")
	require.NoError(t, repo.Create(ctx, gone))
	require.NoError(t, gone.MarkDeleted())
	require.NoError(t, repo.Update(ctx, gone))

	err := db.NewTransactionManager(gdb).RunInTransaction(ctx, func(txCtx context.Context) error {
		all, err := repo.ListForUpdate(txCtx)
		if err != nil {
			return err
		}
		assert.Equal(t, []string{"mod_gone", "mod_root"}, moduleIDs(all))
		return nil
	})
	require.NoError(t, err)
}

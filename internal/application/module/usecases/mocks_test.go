package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bizdesk/internal/domain/module"
)

// memModuleRepository is an in-memory module.Repository. Err, when set, is
// returned by every call.
type memModuleRepository struct {
	modules map[string]*module.Module
	nextSeq uint
	Err     error
}

func newMemModuleRepository() *memModuleRepository {
	return &memModuleRepository{modules: map[string]*module.Module{}}
}

func (r *memModuleRepository) Create(ctx context.Context, m *module.Module) error {
	if r.Err != nil {
		return r.Err
	}
	r.nextSeq++
	if err := m.SetSeq(r.nextSeq); err != nil {
		return err
	}
	r.modules[m.ID()] = m
	return nil
}

func (r *memModuleRepository) GetByID(ctx context.Context, id string) (*module.Module, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.modules[id], nil
}

func (r *memModuleRepository) GetByTabURL(ctx context.Context, tabURL string) (*module.Module, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	for _, m := range r.modules {
		if m.TabURL() == tabURL && !m.IsDeleted() {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memModuleRepository) GetByIDs(ctx context.Context, ids []string) ([]*module.Module, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*module.Module
	for _, id := range ids {
		if m, ok := r.modules[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memModuleRepository) List(ctx context.Context, filter module.Filter) ([]*module.Module, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*module.Module
	for _, m := range r.modules {
		if filter.IsActive != nil && m.IsActive() != *filter.IsActive {
			continue
		}
		if filter.IsDeleted != nil && m.IsDeleted() != *filter.IsDeleted {
			continue
		}
		if filter.ParentID != nil && m.ParentID() != *filter.ParentID {
			continue
		}
		out = append(out, m)
	}
	module.SortModules(out)
	return out, nil
}

func (r *memModuleRepository) ListForUpdate(ctx context.Context) ([]*module.Module, error) {
	return r.List(ctx, module.Filter{})
}

func (r *memModuleRepository) Update(ctx context.Context, m *module.Module) error {
	if r.Err != nil {
		return r.Err
	}
	r.modules[m.ID()] = m
	return nil
}

func (r *memModuleRepository) ExistsByTabURL(ctx context.Context, tabURL string, excludeID string) (bool, error) {
	if r.Err != nil {
		return false, r.Err
	}
	for _, m := range r.modules {
		if m.TabURL() == tabURL && !m.IsDeleted() && m.ID() != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// seed stores a module under the given id with the given parent.
func (r *memModuleRepository) seed(t *testing.T, id, tabURL, parentID string, number int) *module.Module {
	t.Helper()
	m, err := module.NewModule(module.CreateParams{
		ID:           id,
		TabName:      tabURL,
		TabURL:       tabURL,
		Number:       number,
		ParentID:     parentID,
		Capabilities: module.Capabilities{HasView: true},
		IsActive:     true,
	})
	require.NoError(t, err)
	require.NoError(t, r.Create(context.Background(), m))
	return m
}

// snapshotTx restores the repository contents when fn fails, mimicking a
// rolled back transaction.
type snapshotTx struct {
	repo *memModuleRepository
}

func (s snapshotTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := make(map[string]module.Module, len(s.repo.modules))
	for id, m := range s.repo.modules {
		saved[id] = *m
	}
	if err := fn(ctx); err != nil {
		s.repo.modules = make(map[string]*module.Module, len(saved))
		for id, m := range saved {
			m := m
			s.repo.modules[id] = &m
		}
		return err
	}
	return nil
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Text(s string) string { return s }

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

package permission

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/domain/module"
	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/shared/authorization"
	"bizdesk/internal/shared/errors"
)

type mockModuleRepository struct {
	mock.Mock
}

func (m *mockModuleRepository) Create(ctx context.Context, mod *module.Module) error {
	return m.Called(ctx, mod).Error(0)
}

func (m *mockModuleRepository) GetByID(ctx context.Context, id string) (*module.Module, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*module.Module), args.Error(1)
}

func (m *mockModuleRepository) GetByTabURL(ctx context.Context, tabURL string) (*module.Module, error) {
	args := m.Called(ctx, tabURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*module.Module), args.Error(1)
}

func (m *mockModuleRepository) GetByIDs(ctx context.Context, ids []string) ([]*module.Module, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*module.Module), args.Error(1)
}

func (m *mockModuleRepository) List(ctx context.Context, filter module.Filter) ([]*module.Module, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*module.Module), args.Error(1)
}

func (m *mockModuleRepository) ListForUpdate(ctx context.Context) ([]*module.Module, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*module.Module), args.Error(1)
}

func (m *mockModuleRepository) Update(ctx context.Context, mod *module.Module) error {
	return m.Called(ctx, mod).Error(0)
}

func (m *mockModuleRepository) ExistsByTabURL(ctx context.Context, tabURL string, excludeID string) (bool, error) {
	args := m.Called(ctx, tabURL, excludeID)
	return args.Bool(0), args.Error(1)
}

type mockPermissionRepository struct {
	mock.Mock
}

func (m *mockPermissionRepository) GetByUserAndModule(ctx context.Context, userID uint, moduleID string) (*Permission, error) {
	args := m.Called(ctx, userID, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Permission), args.Error(1)
}

func (m *mockPermissionRepository) GetActiveByUserAndModule(ctx context.Context, userID uint, moduleID string) (*Permission, error) {
	args := m.Called(ctx, userID, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Permission), args.Error(1)
}

func (m *mockPermissionRepository) ListByUser(ctx context.Context, userID uint) ([]*Permission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Permission), args.Error(1)
}

func (m *mockPermissionRepository) ListActiveByUser(ctx context.Context, userID uint) ([]*Permission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Permission), args.Error(1)
}

func (m *mockPermissionRepository) Create(ctx context.Context, p *Permission) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPermissionRepository) Update(ctx context.Context, p *Permission) error {
	return m.Called(ctx, p).Error(0)
}

type moduleOpts struct {
	isDefault bool
	inactive  bool
	deleted   bool
}

func newTestModule(t *testing.T, id string, opts moduleOpts) *module.Module {
	t.Helper()
	m, err := module.ReconstructModule(id, 1, id, "", "/"+id, 0, "",
		module.Capabilities{HasView: true, HasAdd: true, HasEdit: true, HasDelete: true},
		opts.isDefault, !opts.inactive, opts.deleted, time.Now(), time.Now())
	require.NoError(t, err)
	return m
}

func newTestRow(t *testing.T, userID uint, moduleID string, grants vo.Grants, blocked, deleted bool) *Permission {
	t.Helper()
	p, err := ReconstructPermission("perm_"+moduleID, userID, moduleID, grants, blocked, deleted, time.Now(), time.Now())
	require.NoError(t, err)
	return p
}

var (
	u1        = Subject{UserID: 1, Role: authorization.RoleUser}
	admin     = Subject{UserID: 2, Role: authorization.RoleAdmin}
	superUser = Subject{UserID: 3, Role: authorization.RoleSuperAdmin}
)

func TestPolicy_Evaluate(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name       string
		subject    Subject
		module     moduleOpts
		row        func(t *testing.T) *Permission
		capability vo.Capability
		want       Decision
	}{
		{
			name:       "default module without row grants view",
			subject:    u1,
			module:     moduleOpts{isDefault: true},
			capability: vo.CapabilityView,
			want:       Decision{Allowed: true, Rule: RuleModuleDefault},
		},
		{
			name:       "default module without row denies edit",
			subject:    u1,
			module:     moduleOpts{isDefault: true},
			capability: vo.CapabilityEdit,
			want:       Decision{Rule: RuleModuleDefault, Reason: errors.DetailNotGranted},
		},
		{
			name:    "blocked row denies even a granted capability",
			subject: u1,
			row: func(t *testing.T) *Permission {
				return newTestRow(t, 1, "m1", vo.Grants{View: true}, true, false)
			},
			capability: vo.CapabilityView,
			want:       Decision{Rule: RuleBlock, Reason: errors.DetailBlocked},
		},
		{
			name:    "block wins over module default",
			subject: u1,
			module:  moduleOpts{isDefault: true},
			row: func(t *testing.T) *Permission {
				return newTestRow(t, 1, "m1", vo.Grants{}, true, false)
			},
			capability: vo.CapabilityView,
			want:       Decision{Rule: RuleBlock, Reason: errors.DetailBlocked},
		},
		{
			name:    "explicit grant allows flagged capability",
			subject: u1,
			row: func(t *testing.T) *Permission {
				return newTestRow(t, 1, "m1", vo.Grants{Add: true}, false, false)
			},
			capability: vo.CapabilityAdd,
			want:       Decision{Allowed: true, Rule: RuleExplicitGrant},
		},
		{
			name:    "explicit row without view overrides default module",
			subject: u1,
			module:  moduleOpts{isDefault: true},
			row: func(t *testing.T) *Permission {
				return newTestRow(t, 1, "m1", vo.Grants{Edit: true}, false, false)
			},
			capability: vo.CapabilityView,
			want:       Decision{Rule: RuleExplicitGrant, Reason: errors.DetailNotGranted},
		},
		{
			name:    "deleted row is not authoritative",
			subject: u1,
			row: func(t *testing.T) *Permission {
				return newTestRow(t, 1, "m1", vo.Grants{View: true}, true, true)
			},
			capability: vo.CapabilityView,
			want:       Decision{Rule: RuleFallthrough, Reason: errors.DetailNotGranted},
		},
		{
			name:       "no row on regular module denies",
			subject:    admin,
			capability: vo.CapabilityView,
			want:       Decision{Rule: RuleFallthrough, Reason: errors.DetailNotGranted},
		},
		{
			name:    "inactive module denies before grants",
			subject: u1,
			module:  moduleOpts{inactive: true},
			row: func(t *testing.T) *Permission {
				return newTestRow(t, 1, "m1", vo.Grants{View: true}, false, false)
			},
			capability: vo.CapabilityView,
			want:       Decision{Rule: RuleModuleAvailable, Reason: errors.DetailModuleUnavailable},
		},
		{
			name:       "deleted module denies",
			subject:    u1,
			module:     moduleOpts{deleted: true, isDefault: true},
			capability: vo.CapabilityView,
			want:       Decision{Rule: RuleModuleAvailable, Reason: errors.DetailModuleUnavailable},
		},
		{
			name:    "super admin bypasses block",
			subject: superUser,
			row: func(t *testing.T) *Permission {
				return newTestRow(t, 3, "m1", vo.Grants{}, true, false)
			},
			capability: vo.CapabilityDelete,
			want:       Decision{Allowed: true, Rule: RuleRoleBypass},
		},
		{
			name:       "super admin bypasses unavailable module",
			subject:    superUser,
			module:     moduleOpts{inactive: true},
			capability: vo.CapabilityEdit,
			want:       Decision{Allowed: true, Rule: RuleRoleBypass},
		},
		{
			name:       "unknown role gets no bypass",
			subject:    Subject{UserID: 9, Role: authorization.UserRole("root")},
			capability: vo.CapabilityView,
			want:       Decision{Rule: RuleFallthrough, Reason: errors.DetailNotGranted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Subject:    tt.subject,
				Module:     newTestModule(t, "m1", tt.module),
				Capability: tt.capability,
			}
			if tt.row != nil {
				in.Row = tt.row(t)
			}
			assert.Equal(t, tt.want, policy.Evaluate(in))
		})
	}
}

func TestPolicy_BypassRoleIsConfigurable(t *testing.T) {
	policy := Policy{BypassRole: authorization.RoleAdmin}
	m := newTestModule(t, "m1", moduleOpts{})

	d := policy.Evaluate(Input{Subject: admin, Module: m, Capability: vo.CapabilityDelete})
	assert.Equal(t, Decision{Allowed: true, Rule: RuleRoleBypass}, d)

	d = policy.Evaluate(Input{Subject: u1, Module: m, Capability: vo.CapabilityView})
	assert.False(t, d.Allowed)
}

func TestPolicy_EffectiveGrants(t *testing.T) {
	policy := DefaultPolicy()
	m := newTestModule(t, "m1", moduleOpts{isDefault: true})

	eff := policy.EffectiveGrants(u1, m, nil)
	assert.Equal(t, vo.Grants{View: true}, eff.Grants)
	assert.False(t, eff.Blocked)

	blocked := newTestRow(t, 1, "m1", vo.Grants{View: true, Add: true}, true, false)
	eff = policy.EffectiveGrants(u1, m, blocked)
	assert.Equal(t, vo.Grants{}, eff.Grants)
	assert.True(t, eff.Blocked)

	eff = policy.EffectiveGrants(superUser, m, blocked)
	assert.Equal(t, vo.Grants{View: true, Add: true, Edit: true, Delete: true}, eff.Grants)
	assert.False(t, eff.Blocked)
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown module is not found", func(t *testing.T) {
		modules := new(mockModuleRepository)
		perms := new(mockPermissionRepository)
		modules.On("GetByID", ctx, "missing").Return(nil, nil)

		_, err := NewResolver(modules, perms, DefaultPolicy()).Resolve(ctx, u1, "missing", vo.CapabilityView)
		assert.True(t, errors.IsNotFoundError(err))
		perms.AssertNotCalled(t, "GetActiveByUserAndModule", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blocked row denies", func(t *testing.T) {
		modules := new(mockModuleRepository)
		perms := new(mockPermissionRepository)
		modules.On("GetByID", ctx, "m1").Return(newTestModule(t, "m1", moduleOpts{}), nil)
		perms.On("GetActiveByUserAndModule", ctx, uint(1), "m1").
			Return(newTestRow(t, 1, "m1", vo.Grants{View: true}, true, false), nil)

		d, err := NewResolver(modules, perms, DefaultPolicy()).Resolve(ctx, u1, "m1", vo.CapabilityView)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, errors.DetailBlocked, d.Reason)
		perms.AssertExpectations(t)
	})

	t.Run("bypass does not read grant rows", func(t *testing.T) {
		modules := new(mockModuleRepository)
		perms := new(mockPermissionRepository)
		modules.On("GetByID", ctx, "m1").Return(newTestModule(t, "m1", moduleOpts{}), nil)

		d, err := NewResolver(modules, perms, DefaultPolicy()).Resolve(ctx, superUser, "m1", vo.CapabilityDelete)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		perms.AssertNotCalled(t, "GetActiveByUserAndModule", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure surfaces as persistence error", func(t *testing.T) {
		modules := new(mockModuleRepository)
		perms := new(mockPermissionRepository)
		dbErr := fmt.Errorf("connection reset")
		modules.On("GetByID", ctx, "m1").Return(newTestModule(t, "m1", moduleOpts{}), nil)
		perms.On("GetActiveByUserAndModule", ctx, uint(1), "m1").Return(nil, dbErr)

		_, err := NewResolver(modules, perms, DefaultPolicy()).Resolve(ctx, u1, "m1", vo.CapabilityView)
		require.Error(t, err)
		appErr := errors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrorTypeInternal, appErr.Type)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestResolver_ResolveAll(t *testing.T) {
	ctx := context.Background()
	modules := new(mockModuleRepository)
	perms := new(mockPermissionRepository)

	dashboard := newTestModule(t, "dashboard", moduleOpts{isDefault: true})
	invoices := newTestModule(t, "invoices", moduleOpts{})
	stock := newTestModule(t, "stock", moduleOpts{})

	perms.On("ListActiveByUser", ctx, uint(1)).Return([]*Permission{
		newTestRow(t, 1, "invoices", vo.Grants{View: true, Add: true}, false, false),
	}, nil).Once()

	got, err := NewResolver(modules, perms, DefaultPolicy()).ResolveAll(ctx, u1, []*module.Module{dashboard, invoices, stock})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, vo.Grants{View: true}, got[0].Grants)
	assert.Equal(t, vo.Grants{View: true, Add: true}, got[1].Grants)
	assert.Equal(t, vo.Grants{}, got[2].Grants)
	perms.AssertExpectations(t)
}

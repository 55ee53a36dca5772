package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bizdesk/internal/domain/module"
	"bizdesk/internal/domain/permission"
	"bizdesk/internal/domain/user"
	vo "bizdesk/internal/domain/user/value_objects"
	"bizdesk/internal/infrastructure/persistence/models"
	"bizdesk/internal/infrastructure/repository"
	"bizdesk/internal/shared/authorization"
	"bizdesk/internal/shared/db"
	"bizdesk/internal/shared/logger"
)

type fixture struct {
	modules     module.Repository
	permissions permission.Repository
	users       user.Repository
	tx          *db.TransactionManager
	resolver    *permission.Resolver
	cache       *recordingInvalidator
}

type recordingInvalidator struct {
	calls []uint
	err   error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID uint) error {
	r.calls = append(r.calls, userID)
	return r.err
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(&models.UserModel{}, &models.ModuleModel{}, &models.PermissionModel{}))

	log := logger.NewNop()
	f := &fixture{
		modules:     repository.NewModuleRepository(gdb, log),
		permissions: repository.NewPermissionRepository(gdb, log),
		users:       repository.NewUserRepository(gdb, log),
		tx:          db.NewTransactionManager(gdb),
		cache:       &recordingInvalidator{},
	}
	f.resolver = permission.NewResolver(f.modules, f.permissions, permission.DefaultPolicy())
	return f
}

func (f *fixture) addUser(t *testing.T, email string, role authorization.UserRole) *user.User {
	t.Helper()
	addr, err := vo.NewEmail(email)
	require.NoError(t, err)
	u, err := user.NewUser(addr, "Test User", role)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

type moduleSpec struct {
	id, parentID string
	number       int
	isDefault    bool
	inactive     bool
}

func (f *fixture) addModule(t *testing.T, spec moduleSpec) *module.Module {
	t.Helper()
	m, err := module.NewModule(module.CreateParams{
		ID:           spec.id,
		TabName:      spec.id,
		TabURL:       fmt.Sprintf("/%s", spec.id),
		Number:       spec.number,
		ParentID:     spec.parentID,
		Capabilities: module.Capabilities{HasView: true, HasAdd: true, HasEdit: true, HasDelete: true},
		IsDefault:    spec.isDefault,
		IsActive:     !spec.inactive,
	})
	require.NoError(t, err)
	require.NoError(t, f.modules.Create(context.Background(), m))
	return m
}

func (f *fixture) deleteModule(t *testing.T, m *module.Module) {
	t.Helper()
	require.NoError(t, m.MarkDeleted())
	require.NoError(t, f.modules.Update(context.Background(), m))
}

func boolPtr(b bool) *bool { return &b }

package seeds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bizdesk/internal/domain/module"
	"bizdesk/internal/infrastructure/persistence/models"
	"bizdesk/internal/infrastructure/repository"
	"bizdesk/internal/shared/authorization"
	"bizdesk/internal/shared/db"
	"bizdesk/internal/shared/logger"
)

const testSeed = `
modules:
  - tab_name: Dashboard
    tab_url: /dashboard
    number: 1
    capabilities: [view]
    default: true
  - tab_name: Accounts
    tab_url: /accounts
    number: 2
    capabilities: [view, add, edit, delete]
    children:
      - tab_name: Invoices
        tab_url: /invoices
        number: 1
        capabilities: [view, add, edit, delete]
users:
  - email: Admin@Example.com
    name: Admin
    role: super_admin
    password: correct-horse
`

type prefixHasher struct{}

func (prefixHasher) Hash(password string) (string, error) { return "h:" + password, nil }
func (prefixHasher) Verify(password, hash string) error {
	if hash != "h:"+password {
		return assert.AnError
	}
	return nil
}

func setup(t *testing.T) (*Seeder, module.Repository, *gorm.DB) {
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
	modules := repository.NewModuleRepository(gdb, log)
	users := repository.NewUserRepository(gdb, log)
	return NewSeeder(modules, users, prefixHasher{}, db.NewTransactionManager(gdb), log), modules, gdb
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(testSeed))
	require.NoError(t, err)
	require.Len(t, f.Modules, 2)
	assert.Len(t, f.Modules[1].Children, 1)
	assert.Equal(t, "super_admin", f.Users[0].Role)

	_, err = Parse([]byte("modules: ["))
	assert.Error(t, err)
}

func TestSeeder_ApplyIsRepeatable(t *testing.T) {
	ctx := context.Background()
	seeder, modules, gdb := setup(t)
	f, err := Parse([]byte(testSeed))
	require.NoError(t, err)

	res, err := seeder.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Result{ModulesCreated: 3, UsersCreated: 1}, res)

	accounts, err := modules.GetByTabURL(ctx, "/accounts")
	require.NoError(t, err)
	invoices, err := modules.GetByTabURL(ctx, "/invoices")
	require.NoError(t, err)
	assert.Equal(t, accounts.ID(), invoices.ParentID())

	dashboard, err := modules.GetByTabURL(ctx, "/dashboard")
	require.NoError(t, err)
	assert.True(t, dashboard.IsDefault())
	assert.True(t, dashboard.Capabilities().HasView)
	assert.False(t, dashboard.Capabilities().HasAdd)

	res, err = seeder.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Result{ModulesSkipped: 3, UsersSkipped: 1}, res)

	var u models.UserModel
	require.NoError(t, gdb.Where("email = ?", "admin@example.com").First(&u).Error)
	assert.Equal(t, string(authorization.RoleSuperAdmin), u.Role)
	assert.Equal(t, "h:correct-horse", u.PasswordHash)
}

func TestSeeder_RollsBackOnBadCapability(t *testing.T) {
	ctx := context.Background()
	seeder, modules, _ := setup(t)

	f := &File{Modules: []ModuleSeed{
		{TabName: "Stock", TabURL: "/stock", Capabilities: []string{"view"}},
		{TabName: "Taxes", TabURL: "/taxes", Capabilities: []string{"approve"}},
	}}
	_, err := seeder.Apply(ctx, f)
	require.Error(t, err)

	stock, err := modules.GetByTabURL(ctx, "/stock")
	require.NoError(t, err)
	assert.Nil(t, stock)
}

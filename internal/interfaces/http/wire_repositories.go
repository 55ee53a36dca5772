package http

import (
	"bizdesk/internal/domain/module"
	"bizdesk/internal/domain/permission"
	"bizdesk/internal/domain/user"
	"bizdesk/internal/infrastructure/repository"
	"bizdesk/internal/shared/db"
)

// repositories holds the store instances. permissionRepo always hits the
// database; the cached view used for reads lives in services.
type repositories struct {
	moduleRepo     module.Repository
	permissionRepo permission.Repository
	userRepo       user.Repository
	txManager      *db.TransactionManager
}

func (c *Container) initRepositories() {
	c.repos = &repositories{
		moduleRepo:     repository.NewModuleRepository(c.db, c.log),
		permissionRepo: repository.NewPermissionRepository(c.db, c.log),
		userRepo:       repository.NewUserRepository(c.db, c.log),
		txManager:      db.NewTransactionManager(c.db),
	}
}

package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bizdesk/internal/infrastructure/persistence/models"
	"bizdesk/internal/shared/logger"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.ModuleModel{},
		&models.PermissionModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the persistence models.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		logger: logger.WithComponent("migration.gorm"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	targets := AutoMigrateModels()
	if err := db.WithContext(ctx).AutoMigrate(targets...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	s.logger.Infow("auto migration completed", "models_count", len(targets))
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return StrategyGormAutoMigrate
}

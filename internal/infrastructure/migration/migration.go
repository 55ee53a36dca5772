package migration

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bizdesk/internal/shared/constants"
	"bizdesk/internal/shared/logger"
)

const (
	StrategyGormAutoMigrate = "gorm_auto_migrate"
	StrategyGoose           = "goose"
	StrategyGolangMigrate   = "golang_migrate"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks a strategy by name. An empty name falls back to the
// environment: development uses AutoMigrate, anything else the versioned
// scripts of the driver (golang-migrate on mysql, goose elsewhere).
func NewManager(name, environment, driver string) (*Manager, error) {
	var strategy Strategy

	switch strings.ToLower(name) {
	case StrategyGormAutoMigrate, "auto":
		strategy = NewGormAutoMigrateStrategy()
	case StrategyGoose:
		strategy = NewGooseStrategy()
	case StrategyGolangMigrate:
		strategy = NewGolangMigrateStrategy()
	case "":
		switch {
		case strings.ToLower(environment) == constants.EnvDevelopment:
			strategy = NewGormAutoMigrateStrategy()
		case strings.ToLower(driver) == "mysql" || driver == "":
			strategy = NewGolangMigrateStrategy()
		default:
			strategy = NewGooseStrategy()
		}
	default:
		return nil, fmt.Errorf("unknown migration strategy: %s", name)
	}

	return NewManagerWithStrategy(strategy), nil
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.WithComponent("migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(ctx context.Context, db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(ctx, db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// Down rolls back steps scripts. AutoMigrate has nothing to roll back.
func (m *Manager) Down(ctx context.Context, db *gorm.DB, steps int) error {
	versioned, ok := m.strategy.(VersionedStrategy)
	if !ok {
		return fmt.Errorf("strategy %s does not support rollback", m.strategy.GetName())
	}
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	return versioned.MigrateDown(ctx, db, steps)
}

// Status lists the scripts of a versioned strategy.
func (m *Manager) Status(ctx context.Context, db *gorm.DB) ([]ScriptStatus, error) {
	versioned, ok := m.strategy.(VersionedStrategy)
	if !ok {
		return nil, fmt.Errorf("strategy %s has no versioned scripts", m.strategy.GetName())
	}
	return versioned.Status(ctx, db)
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// GetStrategyInfo returns information about the current strategy
func (m *Manager) GetStrategyInfo() map[string]interface{} {
	return map[string]interface{}{
		"name":        m.strategy.GetName(),
		"description": getStrategyDescription(m.strategy.GetName()),
	}
}

func getStrategyDescription(strategyName string) string {
	switch strategyName {
	case StrategyGormAutoMigrate:
		return "GORM AutoMigrate - Automatic schema migration based on struct definitions"
	case StrategyGolangMigrate:
		return "golang-migrate - Version-controlled SQL migration scripts"
	case StrategyGoose:
		return "goose - Version-controlled SQL migration scripts per dialect"
	default:
		return "Unknown migration strategy"
	}
}

package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"bizdesk/internal/shared/logger"
)

//go:embed scripts
var scriptsFS embed.FS

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate brings the schema up to date
	Migrate(ctx context.Context, db *gorm.DB) error
	// GetName returns the strategy name
	GetName() string
}

// VersionedStrategy is a Strategy backed by numbered scripts that can be
// rolled back and inspected.
type VersionedStrategy interface {
	Strategy
	MigrateDown(ctx context.Context, db *gorm.DB, steps int) error
	Status(ctx context.Context, db *gorm.DB) ([]ScriptStatus, error)
}

// ScriptStatus reports whether one numbered script has been applied.
type ScriptStatus struct {
	Version int64
	Name    string
	Applied bool
}

// GolangMigrateStrategy runs the embedded MySQL scripts with golang-migrate.
type GolangMigrateStrategy struct {
	logger logger.Interface
}

// NewGolangMigrateStrategy creates a new golang-migrate strategy
func NewGolangMigrateStrategy() *GolangMigrateStrategy {
	return &GolangMigrateStrategy{
		logger: logger.WithComponent("migration.golang-migrate"),
	}
}

// Migrate executes golang-migrate migration
func (s *GolangMigrateStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	m, err := s.createMigrateInstance(ctx, db)
	if err != nil {
		return err
	}
	defer m.Close()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		s.logger.Warnw("database is in dirty state, please fix manually", "version", currentVersion)
		return fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	finalVersion, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get final migration version: %w", err)
	}

	s.logger.Infow("migration completed successfully",
		"from_version", currentVersion,
		"to_version", finalVersion)
	return nil
}

// GetName returns the strategy name
func (s *GolangMigrateStrategy) GetName() string {
	return StrategyGolangMigrate
}

// MigrateDown rolls back the given number of scripts.
func (s *GolangMigrateStrategy) MigrateDown(ctx context.Context, db *gorm.DB, steps int) error {
	m, err := s.createMigrateInstance(ctx, db)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.logger.Errorw("down migration failed", "error", err)
		return fmt.Errorf("failed to run down migrations: %w", err)
	}

	s.logger.Infow("down migration completed successfully", "steps", steps)
	return nil
}

// Status lists every embedded script against the recorded version.
func (s *GolangMigrateStrategy) Status(ctx context.Context, db *gorm.DB) ([]ScriptStatus, error) {
	m, err := s.createMigrateInstance(ctx, db)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	current, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to get current migration version: %w", err)
	}

	src, err := iofs.New(scriptsFS, "scripts/migrate")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration scripts: %w", err)
	}
	defer src.Close()

	var out []ScriptStatus
	version, err := src.First()
	for err == nil {
		out = append(out, ScriptStatus{
			Version: int64(version),
			Name:    scriptName(src, version),
			Applied: version <= current,
		})
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list migration scripts: %w", err)
	}
	return out, nil
}

func scriptName(src source.Driver, version uint) string {
	r, identifier, err := src.ReadUp(version)
	if err != nil {
		return ""
	}
	_ = r.Close()
	return identifier
}

// createMigrateInstance binds golang-migrate to a dedicated connection so
// closing the instance leaves the pool open.
func (s *GolangMigrateStrategy) createMigrateInstance(ctx context.Context, db *gorm.DB) (*migrate.Migrate, error) {
	if db.Dialector.Name() != "mysql" {
		return nil, fmt.Errorf("golang-migrate scripts target mysql, got %s", db.Dialector.Name())
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	driver, err := mysql.WithConnection(ctx, conn, &mysql.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create MySQL driver: %w", err)
	}

	src, err := iofs.New(scriptsFS, "scripts/migrate")
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to open migration scripts: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// GooseStrategy runs the embedded goose scripts for the connection's dialect.
type GooseStrategy struct {
	logger logger.Interface
}

func NewGooseStrategy() *GooseStrategy {
	return &GooseStrategy{
		logger: logger.WithComponent("migration.goose"),
	}
}

func (s *GooseStrategy) Migrate(ctx context.Context, db *gorm.DB) error {
	provider, err := s.provider(db)
	if err != nil {
		return err
	}

	currentVersion, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Infow("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}

	finalVersion, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}

	s.logger.Infow("migration completed successfully",
		"from_version", currentVersion,
		"to_version", finalVersion)
	return nil
}

func (s *GooseStrategy) GetName() string {
	return StrategyGoose
}

func (s *GooseStrategy) MigrateDown(ctx context.Context, db *gorm.DB, steps int) error {
	provider, err := s.provider(db)
	if err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		if _, err := provider.Down(ctx); err != nil {
			if errors.Is(err, goose.ErrNoNextVersion) {
				break
			}
			s.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
	}

	s.logger.Infow("down migration completed successfully", "steps", steps)
	return nil
}

func (s *GooseStrategy) Status(ctx context.Context, db *gorm.DB) ([]ScriptStatus, error) {
	provider, err := s.provider(db)
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	out := make([]ScriptStatus, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, ScriptStatus{
			Version: st.Source.Version,
			Name:    st.Source.Path,
			Applied: st.State == goose.StateApplied,
		})
	}
	return out, nil
}

func (s *GooseStrategy) provider(db *gorm.DB) (*goose.Provider, error) {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch db.Dialector.Name() {
	case "mysql":
		dialect, dir = goose.DialectMySQL, "scripts/goose/mysql"
	case "sqlite":
		dialect, dir = goose.DialectSQLite3, "scripts/goose/sqlite"
	default:
		return nil, fmt.Errorf("goose: unsupported dialect %s", db.Dialector.Name())
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	fsys, err := fs.Sub(scriptsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration scripts: %w", err)
	}

	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}
	return provider, nil
}

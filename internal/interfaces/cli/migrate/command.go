package migrate

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"bizdesk/internal/infrastructure/database"
	"bizdesk/internal/infrastructure/migration"
	"bizdesk/internal/interfaces/cli/bootstrap"
	"bizdesk/internal/shared/logger"
)

func NewCommand(opts *bootstrap.Options) *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  `Apply, roll back and inspect the bizdesk database schema.`,
	}

	cmd.PersistentFlags().StringVar(&strategy, "strategy", "", "Migration strategy (auto, goose, golang_migrate); defaults to database.migration")

	cmd.AddCommand(
		newUpCommand(opts, &strategy),
		newDownCommand(opts, &strategy),
		newStatusCommand(opts, &strategy),
	)

	return cmd
}

func newUpCommand(opts *bootstrap.Options, strategy *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(opts, *strategy, func(m *migration.Manager, db *gorm.DB, log logger.Interface) error {
				log.Infow("running up migrations", "strategy", m.GetStrategy().GetName())
				return m.Migrate(cmd.Context(), db)
			})
		},
	}
}

func newDownCommand(opts *bootstrap.Options, strategy *string) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(opts, *strategy, func(m *migration.Manager, db *gorm.DB, log logger.Interface) error {
				log.Infow("running down migrations", "strategy", m.GetStrategy().GetName(), "steps", steps)
				if err := m.Down(cmd.Context(), db, steps); err != nil {
					return fmt.Errorf("down migration failed: %w", err)
				}
				log.Infow("down migration completed")
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to roll back")

	return cmd
}

func newStatusCommand(opts *bootstrap.Options, strategy *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(opts, *strategy, func(m *migration.Manager, db *gorm.DB, log logger.Interface) error {
				scripts, err := m.Status(cmd.Context(), db)
				if err != nil {
					return fmt.Errorf("failed to read migration status: %w", err)
				}

				info := m.GetStrategyInfo()
				fmt.Fprintf(cmd.OutOrStdout(), "Strategy: %s (%s)\n\n", info["name"], info["description"])

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
				for _, s := range scripts {
					fmt.Fprintf(w, "%d\t%s\t%t\n", s.Version, s.Name, s.Applied)
				}
				return w.Flush()
			})
		},
	}
}

func withManager(opts *bootstrap.Options, strategy string, fn func(*migration.Manager, *gorm.DB, logger.Interface) error) error {
	rt, err := bootstrap.Load(opts)
	if err != nil {
		return err
	}

	if strategy == "" {
		strategy = rt.Config.Database.Migration
	}
	manager, err := migration.NewManager(strategy, rt.Env, rt.Config.Database.Driver)
	if err != nil {
		return err
	}

	db, err := rt.OpenDatabase()
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
		}
	}()

	return fn(manager, db, rt.Log)
}

package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"bizdesk/internal/infrastructure/auth"
	"bizdesk/internal/infrastructure/database"
	"bizdesk/internal/infrastructure/persistence/seeds"
	"bizdesk/internal/infrastructure/repository"
	"bizdesk/internal/interfaces/cli/bootstrap"
	"bizdesk/internal/shared/db"
)

func NewCommand(opts *bootstrap.Options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the module catalog and users from a YAML file",
		Long: `Create the modules and users listed in a seed file. Modules are matched
by tab URL and users by email, so running the same file twice changes nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seeds.LoadFile(file)
			if err != nil {
				return err
			}

			rt, err := bootstrap.Load(opts)
			if err != nil {
				return err
			}
			gdb, err := rt.OpenDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			hasher, err := auth.NewBcryptPasswordHasher(rt.Config.Auth.Password.BcryptCost)
			if err != nil {
				return err
			}
			seeder := seeds.NewSeeder(
				repository.NewModuleRepository(gdb, rt.Log),
				repository.NewUserRepository(gdb, rt.Log),
				hasher,
				db.NewTransactionManager(gdb),
				rt.Log,
			)
			res, err := seeder.Apply(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "modules: %d created, %d skipped\nusers: %d created, %d skipped\n",
				res.ModulesCreated, res.ModulesSkipped, res.UsersCreated, res.UsersSkipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "configs/seed.yaml", "Seed file")

	return cmd
}

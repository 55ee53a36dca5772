package main

import (
	"os"

	"github.com/spf13/cobra"

	"bizdesk/internal/interfaces/cli/bootstrap"
	"bizdesk/internal/interfaces/cli/migrate"
	"bizdesk/internal/interfaces/cli/seed"
	"bizdesk/internal/interfaces/cli/server"
	"bizdesk/internal/interfaces/cli/token"
)

func main() {
	opts := &bootstrap.Options{}

	rootCmd := &cobra.Command{
		Use:          "bizdesk",
		Short:        "bizdesk - ERP module registry and access control",
		Long:         `bizdesk serves the ERP module registry, per-user module permissions and the authorization layer in front of the ERP routes.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file; defaults to configs/config.yaml")

	rootCmd.AddCommand(
		server.NewCommand(opts),
		migrate.NewCommand(opts),
		seed.NewCommand(opts),
		token.NewCommand(opts),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

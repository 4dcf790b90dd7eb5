package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bibbank/fraudscore/pkg/postgres"
)

func migrateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := v.GetString("database_url")
			dir := v.GetString("migrations_dir")
			if dsn == "" {
				return fmt.Errorf("database URL is required (--database-url or DATABASE_URL)")
			}

			slog.Info("running migrations", "direction", args[0], "dir", dir)
			run := postgres.RunMigrations
			if args[0] == "down" {
				run = postgres.RunMigrationsDown
			}
			if err := run(dsn, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", args[0])
			return nil
		},
	}

	cmd.Flags().String("database-url", "", "PostgreSQL URL (env DATABASE_URL)")
	cmd.Flags().String("dir", "migrations", "migrations directory (env MIGRATIONS_DIR)")
	_ = v.BindPFlag("database_url", cmd.Flags().Lookup("database-url"))
	_ = v.BindPFlag("migrations_dir", cmd.Flags().Lookup("dir"))
	return cmd
}

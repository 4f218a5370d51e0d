package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Astemirdum/library-borrowing/library/migrations"
	"github.com/Astemirdum/library-borrowing/pkg/postgres"
)

var migrateCommands = []string{"up", "down", "status", "redo", "version"}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|redo|version]",
		Short:     "Run the embedded schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrateCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(db, migrations.MigrationFiles, args[0]); err != nil {
				return errors.Wrapf(err, "migrate %s", args[0])
			}
			return nil
		},
	}
}

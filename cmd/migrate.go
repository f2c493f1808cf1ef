package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/go-petr/bank-registry/db"
	"github.com/go-petr/bank-registry/pkg/dbpkg"
)

var errNoDBSource = errors.New("DB_SOURCE is not set")

// migrateCommand constructs the 'migrate' subcommand that creates
// the snapshot tables using the embedded goose migrations.
func migrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrates snapshot database to the latest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := setup(*configPath)
			if err != nil {
				return err
			}

			if config.DBSource == "" {
				return errNoDBSource
			}

			conn, closeDB, err := getDB(logger, config)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := dbpkg.Migrate(conn, db.Migrations, db.MigrationDir); err != nil {
				return err
			}

			logger.Info().Msg("database is up to date")

			return nil
		},
	}
}

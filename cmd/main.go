// Package main provides the CLI entrypoint of the bank registry.
// It wires the serve and migrate subcommands and loads configuration.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-petr/bank-registry/internal/middleware"
	"github.com/go-petr/bank-registry/pkg/configpkg"
	"github.com/go-petr/bank-registry/pkg/dbpkg"

	_ "github.com/lib/pq"
)

// setup loads the configuration from path and creates the application logger.
func setup(path string) (configpkg.Config, zerolog.Logger, error) {
	config, err := configpkg.Load(path)
	if err != nil {
		return config, zerolog.Nop(), fmt.Errorf("cannot load config: %w", err)
	}

	return config, middleware.CreateLogger(config), nil
}

// getDB connects to the configured database and returns it
// along with a cleanup function closing the connection pool.
func getDB(logger zerolog.Logger, config configpkg.Config) (*sql.DB, func(), error) {
	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot connect to database: %w", err)
	}

	return db, func() {
		logger.Info().Msg("closing database connection...")

		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("cannot close database connection")
		}
	}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "bank",
		Short:         "In-memory registry of bank users, accounts and money transfers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configPath := rootCmd.PersistentFlags().StringP("config", "c", "./configs", "Directory holding app.env")

	rootCmd.AddCommand(
		serveCommand(configPath),
		migrateCommand(configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

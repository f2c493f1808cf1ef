package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/go-petr/bank-registry/cmd/httpserver"
	"github.com/go-petr/bank-registry/internal/registry"
	"github.com/go-petr/bank-registry/internal/snapshotrepo"
)

// restore replaces the contents of reg with the stored snapshot.
func restore(ctx context.Context, repo *snapshotrepo.RepoPGS, reg *registry.Registry) error {
	snapshot, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("cannot load snapshot: %w", err)
	}

	if err := reg.Restore(snapshot); err != nil {
		return fmt.Errorf("cannot restore registry: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int("users", len(snapshot.Users)).
		Int("accounts", len(snapshot.Accounts)).
		Int("transfers", len(snapshot.Transfers)).
		Msg("registry restored")

	return nil
}

// serveCommand constructs the 'serve' subcommand running the http api.
//
// When DB_SOURCE is set the registry is restored from the stored snapshot
// on start and its state is saved back once the server stops.
func serveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the bank API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := setup(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ctx = logger.WithContext(ctx)

			reg := registry.New()

			var repo *snapshotrepo.RepoPGS

			if config.DBSource != "" {
				conn, closeDB, err := getDB(logger, config)
				if err != nil {
					return err
				}
				defer closeDB()

				repo = snapshotrepo.NewRepoPGS(conn)

				if err := restore(ctx, repo, reg); err != nil {
					return err
				}
			}

			promReg := prometheus.NewRegistry()
			promReg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			server, err := httpserver.New(reg, logger, config, promReg)
			if err != nil {
				return fmt.Errorf("cannot create server: %w", err)
			}

			logger.Info().Msg("BANK API SERVER HAS STARTED")

			runErr := server.Run(ctx)

			if repo != nil {
				// ctx is already cancelled here.
				if err := repo.Save(context.Background(), reg.Snapshot()); err != nil {
					return fmt.Errorf("cannot save snapshot: %w", err)
				}

				logger.Info().Msg("registry snapshot saved")
			}

			return runErr
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RamsisDev/Latip-Hackaton/pkg/account"
	"github.com/RamsisDev/Latip-Hackaton/pkg/api"
	"github.com/RamsisDev/Latip-Hackaton/pkg/chassis"
	"github.com/RamsisDev/Latip-Hackaton/pkg/importer"
	"github.com/RamsisDev/Latip-Hackaton/pkg/trademark"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (and HTTP/3 + MCP over QUIC when enabled)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	cfg, logger := a.cfg, a.logger

	store := cfg.newStore()
	if err := store.Load(); err != nil {
		return fmt.Errorf("load datasets: %w", err)
	}
	logger.Info("datasets loaded", "countries", store.CountryCount(), "records", store.TotalRecords())

	repo, closeRepo, err := openAccounts(cfg.AccountsDB)
	if err != nil {
		return err
	}
	defer closeRepo()
	accounts := account.NewService(repo, cfg.Accounts.StartingTokens, logger)

	router := api.NewRouter(store, accounts, api.Options{SearchCost: cfg.Search.Cost, Logger: logger})

	// SIGINT/SIGTERM: graceful shutdown. SIGHUP: hot reload of datasets.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go reloadOnSIGHUP(ctx, store, a)

	if cfg.CheckInterval > 0 {
		sdb, err := importer.OpenSourceDB(cfg.sourcesDB())
		if err != nil {
			logger.Warn("source checks disabled", "error", err)
		} else {
			defer sdb.Close()
			if err := sdb.Seed(importer.All()); err != nil {
				logger.Warn("seed sources", "error", err)
			}
			go importer.NewChecker(sdb, logger, cfg.CheckInterval).Start(ctx)
		}
	}

	if cfg.QUIC.Enabled {
		return a.serveChassis(ctx, router, store)
	}
	return a.serveHTTP(ctx, router)
}

func (a *app) serveHTTP(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("latip listening", "addr", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) serveChassis(ctx context.Context, handler http.Handler, store *trademark.Store) error {
	srv, err := chassis.New(chassis.Config{
		Addr:      a.cfg.Addr,
		CertFile:  a.cfg.QUIC.CertFile,
		KeyFile:   a.cfg.QUIC.KeyFile,
		DevHosts:  a.cfg.QUIC.Hosts,
		Handler:   handler,
		MCPServer: api.NewMCPServer(store, Version),
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	startErr := srv.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Join(startErr, srv.Stop(shutdownCtx))
}

func reloadOnSIGHUP(ctx context.Context, store *trademark.Store, a *app) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sighup:
			a.logger.Info("SIGHUP received, reloading datasets")
			if err := store.Reload(); err != nil {
				a.logger.Error("reload failed", "error", err)
				continue
			}
			a.logger.Info("datasets reloaded", "countries", store.CountryCount(), "records", store.TotalRecords())
		}
	}
}

// openAccounts returns the SQLite repository at path, or an in-memory one
// when path is empty.
func openAccounts(path string) (account.Repository, func(), error) {
	if path == "" {
		return account.NewMemoryRepository(), func() {}, nil
	}
	repo, err := account.OpenSQLiteRepository(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open accounts db: %w", err)
	}
	return repo, func() { repo.Close() }, nil
}

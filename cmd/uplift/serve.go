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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uplift-labs/uplift/pkg/affirmations"
	"github.com/uplift-labs/uplift/pkg/api"
	"github.com/uplift-labs/uplift/pkg/config"
	pkgdb "github.com/uplift-labs/uplift/pkg/db"
	"github.com/uplift-labs/uplift/pkg/kvstore"
	"github.com/uplift-labs/uplift/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API server",
	Long: `Start an HTTP server exposing the affirmation engine to a web frontend
on the same device.

Configuration is read from a YAML file and UPLIFT_* environment variables;
set UPLIFT_CONFIG_PATH to use a specific file (default ./uplift.yaml).
The --db and --catalog flags override the configured paths.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		if catalogPath != "" {
			cfg.CatalogPath = catalogPath
		}

		logger, err := buildLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()
		pkgdb.SetLogger(logger)

		resolvedPath, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
		if err != nil {
			return err
		}

		dbConn, err := pkgdb.OpenDBConnection(resolvedPath, cfg.EnableWAL, cfg.SyncMode)
		if err != nil {
			return fmt.Errorf("failed to open database at '%s': %w", resolvedPath, err)
		}
		defer dbConn.Close()

		if err := pkgdb.UpgradeDB(dbConn, resolvedPath, pkgdb.TargetSchemaVersion); err != nil {
			return err
		}

		kv := kvstore.New(dbConn, logger)
		if !affirmations.MigrateData(kv, logger) {
			return fmt.Errorf("failed to migrate app data in '%s'", resolvedPath)
		}

		settings := affirmations.NewSettingsStore(kv)
		activity := affirmations.NewActivityStore(kv, nil)
		service := affirmations.NewService(settings, activity, logger)
		if err := service.Initialize(cfg.CatalogPath); err != nil {
			return fmt.Errorf("failed to load affirmation catalog: %w", err)
		}

		srv := api.NewServer(service, settings, activity, kv, logger)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			logger.Info("shutting down", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

// buildLogger constructs a zap production logger at the configured level.
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

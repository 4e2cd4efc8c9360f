package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/indexer"
	"github.com/hyperjump/rekishi/internal/server"
	"github.com/hyperjump/rekishi/internal/watcher"
)

func newServerCmd(g *globalOptions) *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP API (and watch configured export files)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.setup(false)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			return runServer(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("config loaded",
		zap.String("store", cfg.Storage.Type),
		zap.String("provider", cfg.Embedding.Provider),
		zap.Bool("debug", cfg.Debug))

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	srv := server.NewServer(components.Engine, components.Indexer, components.Collection, cfg, logger)

	if len(cfg.Watch.Files) > 0 {
		w := newExportWatcher(cfg.Watch.Files, components.Indexer, logger)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
		go w.SyncExistingFiles()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// newExportWatcher re-ingests a watched export whenever it changes. Already
// indexed ids are skipped, so each run only adds new history rows.
func newExportWatcher(files []string, idx *indexer.Indexer, logger *zap.Logger) *watcher.Watcher {
	return watcher.NewWatcher(files, func(path string) {
		report, err := idx.IngestFile(context.Background(), path)
		if err != nil {
			logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Info("watch ingest finished",
			zap.String("path", path),
			zap.Int("inserted", report.Inserted),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
	}, watcher.WithLogger(logger))
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairIndex/internal/api"
	"pairIndex/internal/config"
	"pairIndex/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func loadCommandConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(cfgFile, envFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadCommandConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger, nil)
}

// serve opens the store, runs one sync and serves the API until ctx is done.
// A store that cannot be opened is fatal. A failed sync is logged and the API
// serves whatever the store holds. ready, when set, receives the bound address.
func serve(ctx context.Context, cfg config.Config, logger *zap.Logger, ready func(addr string)) error {
	entries := cfg.Symbols
	if len(entries) == 0 {
		entries = api.DefaultSymbols()
	}
	symbols, err := api.NewSymbolTable(entries)
	if err != nil {
		return err
	}
	logger.Debug("symbols loaded", zap.Int("symbols", symbols.Len()))

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	m := metrics.New()

	logger.Info("starting sync",
		zap.String("rpc", cfg.RPCURL),
		zap.Int("pools", len(cfg.Pools)),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)
	if err := syncPools(ctx, cfg, store, nil, m, logger); err != nil {
		logger.Error("sync failed, serving existing store contents", zap.Error(err))
	}

	server := api.NewServer(api.ServerConfig{Addr: fmt.Sprintf(":%d", cfg.Port)}, store, symbols, m, logger)
	if err := server.Start(); err != nil {
		return err
	}
	if ready != nil {
		ready(server.Addr())
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

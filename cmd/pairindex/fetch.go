package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairIndex/internal/metrics"
	"pairIndex/internal/storage"
)

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadCommandConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return errMissingRPC
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	var export storage.BatchWriter
	if cfg.Out != "" {
		export = storage.NewJsonlSink(cfg.Out)
	}

	logger.Info("starting fetch",
		zap.String("rpc", cfg.RPCURL),
		zap.Int("pools", len(cfg.Pools)),
		zap.String("out", cfg.Out),
	)
	return syncPools(ctx, cfg, store, export, metrics.New(), logger)
}

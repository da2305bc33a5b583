package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pairIndex/internal/chain"
	"pairIndex/internal/config"
	"pairIndex/internal/indexer"
	"pairIndex/internal/metrics"
	"pairIndex/internal/pairs"
	"pairIndex/internal/storage"
	"pairIndex/internal/storage/postgres"
	"pairIndex/internal/storage/sqlite"
)

var errMissingRPC = errors.New("rpc url is required")

func openStore(ctx context.Context, cfg config.Config) (storage.TokenStore, error) {
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// syncPools runs one fetch-and-store cycle against the configured node.
// export, when set, receives the batch after the store commits it.
func syncPools(ctx context.Context, cfg config.Config, store, export storage.BatchWriter, m *metrics.Metrics, logger *zap.Logger) error {
	if cfg.RPCURL == "" {
		return errMissingRPC
	}
	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	logNodeInfo(ctx, cfg, chainClient, logger)

	reader := pairs.NewReader(pairs.ReaderConfig{
		ReadTimeout: cfg.ReadTimeout,
		Concurrency: cfg.Concurrency,
	}, chainClient, m, logger)

	runner := indexer.NewRunner(indexer.RunConfig{
		Pools:  cfg.Pools,
		Export: export,
	}, reader, store, m, logger)
	return runner.Run(ctx)
}

func logNodeInfo(ctx context.Context, cfg config.Config, chainClient *chain.Client, logger *zap.Logger) {
	if cfg.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ReadTimeout)
		defer cancel()
	}

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		logger.Warn("chain id lookup failed", zap.Error(err))
		return
	}
	block, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		logger.Warn("latest block lookup failed", zap.Error(err))
		return
	}
	logger.Info("node connected", zap.String("chain_id", chainID.String()), zap.Uint64("latest_block", block))
}

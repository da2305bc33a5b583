package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pairIndex/internal/metrics"
	"pairIndex/internal/model"
	"pairIndex/internal/storage"
)

// Fetcher resolves pools into token records.
type Fetcher interface {
	Fetch(ctx context.Context, pools []model.PoolIdentity) ([]model.TokenRecord, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	Pools []model.PoolIdentity
	// Export receives the batch after the store has committed it. Nil disables export.
	Export storage.BatchWriter
}

// Runner fetches token pairs for the configured pools and writes them as one batch.
type Runner struct {
	cfg     RunConfig
	fetcher Fetcher
	writer  storage.BatchWriter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, fetcher Fetcher, writer storage.BatchWriter, m *metrics.Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		writer:  writer,
		metrics: m,
		logger:  logger,
	}
}

// Run executes one fetch-and-store cycle.
func (r *Runner) Run(ctx context.Context) error {
	if r.fetcher == nil {
		return fmt.Errorf("fetcher is nil")
	}
	if r.writer == nil {
		return fmt.Errorf("writer is nil")
	}

	start := time.Now()
	records, err := r.fetcher.Fetch(ctx, r.cfg.Pools)
	if err != nil {
		return fmt.Errorf("fetch pools: %w", err)
	}
	r.logger.Info("fetch complete",
		zap.Int("pools", len(r.cfg.Pools)),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := r.writer.InsertBatch(ctx, records); err != nil {
		return fmt.Errorf("store records: %w", err)
	}
	r.metrics.AddStored(len(records))

	r.logger.Info("store complete", zap.Int("records", len(records)))

	if r.cfg.Export == nil {
		return nil
	}
	if err := r.cfg.Export.InsertBatch(ctx, records); err != nil {
		return fmt.Errorf("export records: %w", err)
	}
	r.logger.Info("export complete", zap.Int("records", len(records)))
	return nil
}

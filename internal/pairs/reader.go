package pairs

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pairIndex/internal/metrics"
	"pairIndex/internal/model"
)

// StorageReader reads a raw storage word of a contract at the latest block.
type StorageReader interface {
	StorageAt(ctx context.Context, account common.Address, slot common.Hash) ([]byte, error)
}

// ReaderConfig holds runtime settings for the Reader.
type ReaderConfig struct {
	// ReadTimeout bounds each storage read. Zero disables the bound.
	ReadTimeout time.Duration
	// Concurrency is the number of pools read in parallel. Values below 2 read sequentially.
	Concurrency int
}

// Reader resolves configured pools into token records using storage slots 6 and 7.
type Reader struct {
	cfg     ReaderConfig
	node    StorageReader
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewReader(cfg ReaderConfig, node StorageReader, m *metrics.Metrics, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		cfg:     cfg,
		node:    node,
		metrics: m,
		logger:  logger,
	}
}

type parsedPool struct {
	raw     string
	address common.Address
	token0  string
	token1  string
}

// Fetch returns one record per pool in input order. Any failure aborts the
// whole fetch and no records are returned.
func (r *Reader) Fetch(ctx context.Context, pools []model.PoolIdentity) ([]model.TokenRecord, error) {
	if r.node == nil {
		return nil, fmt.Errorf("storage reader is nil")
	}
	if len(pools) == 0 {
		return nil, ErrNoPools
	}

	parsed := make([]parsedPool, 0, len(pools))
	for _, pool := range pools {
		p, err := parsePool(pool)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}

	records := make([]model.TokenRecord, len(parsed))
	if r.cfg.Concurrency < 2 {
		for i, pool := range parsed {
			record, err := r.fetchPool(ctx, pool)
			if err != nil {
				return nil, err
			}
			records[i] = record
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.cfg.Concurrency)
		for i, pool := range parsed {
			i, pool := i, pool
			g.Go(func() error {
				record, err := r.fetchPool(gctx, pool)
				if err != nil {
					return err
				}
				records[i] = record
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	r.metrics.AddFetched(len(records))
	return records, nil
}

func parsePool(pool model.PoolIdentity) (parsedPool, error) {
	address, err := NormalizeAddress(pool.Address)
	if err != nil {
		return parsedPool{}, fmt.Errorf("pool %q: %w", pool.Name, err)
	}
	token0, token1, err := SplitPairName(pool.Name)
	if err != nil {
		return parsedPool{}, err
	}
	return parsedPool{
		raw:     pool.Address,
		address: address,
		token0:  token0,
		token1:  token1,
	}, nil
}

func (r *Reader) fetchPool(ctx context.Context, pool parsedPool) (model.TokenRecord, error) {
	token0Addr, err := r.readAddress(ctx, pool.address, Token0Slot)
	if err != nil {
		return model.TokenRecord{}, fmt.Errorf("pool %s token0: %w", pool.address.Hex(), err)
	}
	token1Addr, err := r.readAddress(ctx, pool.address, Token1Slot)
	if err != nil {
		return model.TokenRecord{}, fmt.Errorf("pool %s token1: %w", pool.address.Hex(), err)
	}

	r.logger.Debug("pool tokens",
		zap.String("pool", pool.address.Hex()),
		zap.String("token0", pool.token0),
		zap.String("token0_addr", token0Addr.Hex()),
		zap.String("token1", pool.token1),
		zap.String("token1_addr", token1Addr.Hex()),
	)

	return model.TokenRecord{
		PoolAddr:   pool.raw,
		Token0:     pool.token0,
		Token1:     pool.token1,
		Token0Addr: token0Addr.Hex(),
		Token1Addr: token1Addr.Hex(),
	}, nil
}

func (r *Reader) readAddress(ctx context.Context, account common.Address, slot int64) (common.Address, error) {
	word, err := r.readWord(ctx, account, slot)
	if err != nil {
		r.metrics.ObserveNodeRead(slot, err)
		r.logger.Warn("storage read failed", zap.String("account", account.Hex()), zap.Int64("slot", slot), zap.Error(err))
		return common.Address{}, fmt.Errorf("%w: slot %d: %w", ErrRPCQuery, slot, err)
	}

	addr, err := DecodeAddressWord(word)
	r.metrics.ObserveNodeRead(slot, err)
	if err != nil {
		return common.Address{}, fmt.Errorf("slot %d: %w", slot, err)
	}
	return addr, nil
}

func (r *Reader) readWord(ctx context.Context, account common.Address, slot int64) ([]byte, error) {
	if r.cfg.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ReadTimeout)
		defer cancel()
	}
	return r.node.StorageAt(ctx, account, slotKey(slot))
}

package storage

import (
	"context"
	"errors"

	"pairIndex/internal/model"
)

// BatchWriter accepts a batch of token records.
type BatchWriter interface {
	InsertBatch(ctx context.Context, records []model.TokenRecord) error
}

// TokenStore persists token records and looks them up by token address.
type TokenStore interface {
	// InsertBatch writes all records in one transaction or none of them.
	BatchWriter
	// QueryByAddress returns every record whose token0 or token1 address equals addr,
	// in insertion order. No match yields an empty slice.
	QueryByAddress(ctx context.Context, addr string) ([]model.TokenRecord, error)
	Close()
}

// Error kinds returned by TokenStore implementations. Each is wrapped together
// with the driver error, so callers match them with errors.Is.
var (
	ErrSetup      = errors.New("store setup failed")
	ErrConnection = errors.New("store connection failed")
	ErrPrepare    = errors.New("statement prepare failed")
	ErrInsert     = errors.New("insert failed")
	ErrTxStart    = errors.New("transaction start failed")
	ErrTxCommit   = errors.New("transaction commit failed")
	ErrQuery      = errors.New("query failed")
	ErrRowDecode  = errors.New("row decode failed")
)

// Table and statements shared by the SQL backends.
const (
	TableName = "token_addr_info_in_pool"

	Token0Index = "idx_token0_addr"
	Token1Index = "idx_token1_addr"
)

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairIndex/internal/model"
	"pairIndex/internal/storage"
)

const insertStatementName = "insert_token_record"

var (
	schema = fmt.Sprintf(`
		DROP TABLE IF EXISTS %[1]s;

		CREATE TABLE IF NOT EXISTS %[1]s (
			id BIGSERIAL PRIMARY KEY,
			pool_addr TEXT NOT NULL,
			token0 TEXT NOT NULL,
			token1 TEXT NOT NULL,
			token0_addr TEXT NOT NULL,
			token1_addr TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (token0_addr);
		CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s (token1_addr);
	`, storage.TableName, storage.Token0Index, storage.Token1Index)

	insertRecordSQL = fmt.Sprintf(`
		INSERT INTO %s (pool_addr, token0, token1, token0_addr, token1_addr)
		VALUES ($1, $2, $3, $4, $5)`, storage.TableName)

	queryByAddressSQL = fmt.Sprintf(`
		SELECT pool_addr, token0, token1, token0_addr, token1_addr
		FROM %s
		WHERE token0_addr = $1 OR token1_addr = $1
		ORDER BY id`, storage.TableName)
)

// Store provides Postgres persistence for token records.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.TokenStore = (*Store)(nil)

// NewStore connects to Postgres and recreates the schema.
// Rows from a previous session are discarded.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: pg dsn is required", storage.ErrSetup)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSetup, err)
	}

	// Simple protocol lets the multi-statement schema run in one round trip.
	if _, err := pool.Exec(ctx, schema, pgx.QueryExecModeSimpleProtocol); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: create schema: %w", storage.ErrSetup, err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertBatch inserts records in a single transaction.
func (s *Store) InsertBatch(ctx context.Context, records []model.TokenRecord) (err error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrConnection, err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTxStart, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Prepare(ctx, insertStatementName, insertRecordSQL); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrPrepare, err)
	}

	for i, record := range records {
		if _, err = tx.Exec(ctx, insertStatementName,
			record.PoolAddr,
			record.Token0,
			record.Token1,
			record.Token0Addr,
			record.Token1Addr,
		); err != nil {
			return fmt.Errorf("%w: record %d (pool %s): %w", storage.ErrInsert, i, record.PoolAddr, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTxCommit, err)
	}
	return nil
}

// QueryByAddress returns records where addr is token0 or token1.
func (s *Store) QueryByAddress(ctx context.Context, addr string) ([]model.TokenRecord, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrConnection, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, queryByAddressSQL, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrQuery, err)
	}
	defer rows.Close()

	records := make([]model.TokenRecord, 0)
	for rows.Next() {
		var record model.TokenRecord
		if err := rows.Scan(
			&record.PoolAddr,
			&record.Token0,
			&record.Token1,
			&record.Token0Addr,
			&record.Token1Addr,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrRowDecode, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrQuery, err)
	}
	return records, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"pairIndex/internal/model"
	"pairIndex/internal/storage"
)

const driverName = "sqlite3"

var schema = fmt.Sprintf(`
DROP TABLE IF EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s (
	id INTEGER PRIMARY KEY,
	pool_addr TEXT NOT NULL,
	token0 TEXT NOT NULL,
	token1 TEXT NOT NULL,
	token0_addr TEXT NOT NULL,
	token1_addr TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (token0_addr);
CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s (token1_addr);
`, storage.TableName, storage.Token0Index, storage.Token1Index)

var (
	insertRecordSQL = fmt.Sprintf(`
		INSERT INTO %s (pool_addr, token0, token1, token0_addr, token1_addr)
		VALUES (?, ?, ?, ?, ?)`, storage.TableName)

	queryByAddressSQL = fmt.Sprintf(`
		SELECT pool_addr, token0, token1, token0_addr, token1_addr
		FROM %s
		WHERE token0_addr = ? OR token1_addr = ?
		ORDER BY id`, storage.TableName)
)

// Store provides SQLite persistence for token records.
type Store struct {
	db *sql.DB
}

var _ storage.TokenStore = (*Store)(nil)

// Open connects to the SQLite file at path and recreates the schema.
// Rows from a previous session are discarded.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: db path is required", storage.ErrSetup)
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db dir: %w", storage.ErrSetup, err)
		}
	}

	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", storage.ErrSetup, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", storage.ErrSetup, err)
	}

	return &Store{db: db}, nil
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}

func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// InsertBatch inserts records in a single transaction.
func (s *Store) InsertBatch(ctx context.Context, records []model.TokenRecord) (err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrConnection, err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTxStart, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertRecordSQL)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrPrepare, err)
	}
	defer stmt.Close()

	for i, record := range records {
		if _, err = stmt.ExecContext(ctx,
			record.PoolAddr,
			record.Token0,
			record.Token1,
			record.Token0Addr,
			record.Token1Addr,
		); err != nil {
			return fmt.Errorf("%w: record %d (pool %s): %w", storage.ErrInsert, i, record.PoolAddr, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTxCommit, err)
	}
	return nil
}

// QueryByAddress returns records where addr is token0 or token1.
func (s *Store) QueryByAddress(ctx context.Context, addr string) ([]model.TokenRecord, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrConnection, err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, queryByAddressSQL, addr, addr)
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

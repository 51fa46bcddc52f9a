package history

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the Postgres connection pool for history rows.
type PostgresConfig struct {
	DSN             string
	Table           string
	Retention       int
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore keeps the history in a Postgres table with upsert-by-date
// semantics and a row-count retention window. Expected schema:
//
//	CREATE TABLE daily_counts (
//		date DATE PRIMARY KEY,
//		value BIGINT NOT NULL
//	);
type PostgresStore struct {
	pool      pgxPool
	table     string
	retention int
}

// NewPostgresStore creates a Postgres-backed store using the provided config.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("history.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "daily_counts"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{pool: pool, table: table, retention: cfg.Retention}, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewPostgresStoreWithPool(pool pgxPool, table string, retention int) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "daily_counts"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: table, retention: retention}, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Load reads all rows in date-ascending order.
func (s *PostgresStore) Load(ctx context.Context) ([]Entry, error) {
	query := fmt.Sprintf(`SELECT date, value FROM %s ORDER BY date ASC`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Date, &e.Value); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Date = truncate(e.Date)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

// Save upserts every entry and trims rows beyond the retention window.
func (s *PostgresStore) Save(ctx context.Context, entries []Entry) error {
	upsert := fmt.Sprintf(`
INSERT INTO %s (date, value)
VALUES ($1, $2)
ON CONFLICT (date) DO UPDATE SET value = EXCLUDED.value`, s.table)
	for _, e := range entries {
		if _, err := s.pool.Exec(ctx, upsert, e.Date, e.Value); err != nil {
			return fmt.Errorf("upsert history row %s: %w", e.Date.Format(DateLayout), err)
		}
	}

	if s.retention > 0 {
		trim := fmt.Sprintf(`
DELETE FROM %s
WHERE date NOT IN (SELECT date FROM %s ORDER BY date DESC LIMIT $1)`, s.table, s.table)
		if _, err := s.pool.Exec(ctx, trim, s.retention); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}
	return nil
}

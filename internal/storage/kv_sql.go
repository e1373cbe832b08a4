package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"explorer/internal/domain"
)

// dialect holds the statements one SQL engine needs for the key-value table.
type dialect struct {
	driverName string
	create     string
	get        string
	upsert     string
	delete     string
}

var dialects = map[domain.StoreDriver]dialect{
	domain.StoreDriverSQLite: {
		driverName: "sqlite",
		get:        `SELECT value_json FROM explorer_kv WHERE key_name = ?`,
		upsert: `INSERT INTO explorer_kv (key_name, value_json, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key_name) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`,
		delete: `DELETE FROM explorer_kv WHERE key_name = ?`,
	},
	domain.StoreDriverPostgres: {
		driverName: "postgres",
		create: `CREATE TABLE IF NOT EXISTS explorer_kv (
			key_name TEXT PRIMARY KEY,
			value_json TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		get: `SELECT value_json FROM explorer_kv WHERE key_name = $1`,
		upsert: `INSERT INTO explorer_kv (key_name, value_json, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key_name) DO UPDATE SET value_json = EXCLUDED.value_json, updated_at = EXCLUDED.updated_at`,
		delete: `DELETE FROM explorer_kv WHERE key_name = $1`,
	},
	domain.StoreDriverMySQL: {
		driverName: "mysql",
		create: `CREATE TABLE IF NOT EXISTS explorer_kv (
			key_name VARCHAR(768) NOT NULL PRIMARY KEY,
			value_json LONGTEXT NOT NULL,
			updated_at DATETIME(6) NOT NULL
		)`,
		get: `SELECT value_json FROM explorer_kv WHERE key_name = ?`,
		upsert: `INSERT INTO explorer_kv (key_name, value_json, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE value_json = VALUES(value_json), updated_at = VALUES(updated_at)`,
		delete: `DELETE FROM explorer_kv WHERE key_name = ?`,
	},
}

// SQLStore is a KVStore over a SQL table.
type SQLStore struct {
	conn  *sql.DB
	d     dialect
	owned bool
}

// NewSQLiteKV serves keys from the explorer_kv table of an open DB.
// Closing the store leaves db open.
func NewSQLiteKV(db *DB) *SQLStore {
	return &SQLStore{conn: db.Conn(), d: dialects[domain.StoreDriverSQLite]}
}

// OpenSQL connects to a Postgres or MySQL server and ensures the table exists.
func OpenSQL(ctx context.Context, driver domain.StoreDriver, dsn string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok || driver == domain.StoreDriverSQLite {
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}
	conn, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := conn.ExecContext(ctx, d.create); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLStore{conn: conn, d: d, owned: true}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, s.d.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.conn.ExecContext(ctx, s.d.upsert, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, s.d.delete, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.conn.Close()
}

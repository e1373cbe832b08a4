package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"explorer/internal/domain"
)

// Options selects and configures the persistence backend.
type Options struct {
	Driver     domain.StoreDriver
	DSN        string // file path for sqlite, connection string otherwise
	Database   string // mongodb database name
	MaxHistory int
}

// Backend bundles the stores the application persists into.
type Backend struct {
	KV      domain.KVStore
	Configs *ConfigStore
	History domain.HistoryStore

	closers []func() error
}

// Open connects the backend chosen by opts.Driver. Only SQLite persists
// history; other drivers keep it in memory for the session.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Backend, error) {
	b := &Backend{}
	switch opts.Driver {
	case domain.StoreDriverSQLite, "":
		db, err := New(opts.DSN)
		if err != nil {
			return nil, err
		}
		b.KV = NewSQLiteKV(db)
		b.History = NewHistoryStore(db, opts.MaxHistory)
		b.closers = append(b.closers, db.Close)
	case domain.StoreDriverPostgres, domain.StoreDriverMySQL:
		kv, err := OpenSQL(ctx, opts.Driver, opts.DSN)
		if err != nil {
			return nil, err
		}
		b.KV = kv
		b.History = NewMemoryHistory(opts.MaxHistory)
		b.closers = append(b.closers, kv.Close)
	case domain.StoreDriverMongoDB:
		kv, err := OpenMongo(ctx, opts.DSN, opts.Database)
		if err != nil {
			return nil, err
		}
		b.KV = kv
		b.History = NewMemoryHistory(opts.MaxHistory)
		b.closers = append(b.closers, kv.Close)
	case domain.StoreDriverMemory:
		b.KV = NewMemoryStore()
		b.History = NewMemoryHistory(opts.MaxHistory)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", opts.Driver)
	}
	b.Configs = NewConfigStore(b.KV, logger)
	return b, nil
}

// Close releases every connection the backend opened.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

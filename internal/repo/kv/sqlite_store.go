package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/storefront/internal/infra/logging"
)

// MemoryDatabasePath selects MemoryStore instead of a database file.
const MemoryDatabasePath = ":memory:"

// ErrStoreBusy is joined to write errors caused by a locked database file.
var ErrStoreBusy = errors.New("store busy")

// SQLiteStoreConfig holds configuration for the SQLite record store.
type SQLiteStoreConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/storefront.db"`

	// BusyTimeout is how long SQLite waits on a locked database before failing
	BusyTimeout time.Duration `env:"BUSY_TIMEOUT" default:"5s"`
}

// SQLiteStore implements Store on a single SQLite table.
type SQLiteStore struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteStoreFactory returns a StoreFactory for cfg. The path ":memory:" yields a MemoryStore.
func SQLiteStoreFactory(cfg SQLiteStoreConfig) StoreFactory {
	return func(ctx context.Context) (Store, error) {
		if cfg.DatabasePath == MemoryDatabasePath {
			return NewMemoryStore(), nil
		}

		return NewSQLiteStore(ctx, cfg)
	}
}

// NewSQLiteStore opens the database at cfg.DatabasePath and creates the schema if needed.
func NewSQLiteStore(ctx context.Context, cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	log := logging.GetLogger("repo.kv.sqlite_store").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds())); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := initializeDB(ctx, db); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	log.DebugContext(ctx, "record store opened")

	return &SQLiteStore{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			key        TEXT    PRIMARY KEY NOT NULL,
			value      BLOB    NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Get implements Store.Get.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte

	err := s.db.QueryRowContext(ctx, "SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query record: %w", mapError(err))
	}

	return value, true, nil
}

// Set implements Store.Set.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert record: %w", mapError(err))
	}

	return nil
}

// Remove implements Store.Remove.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete record: %w", mapError(err))
	}

	return nil
}

// Keys implements Store.Keys.
func (s *SQLiteStore) Keys(ctx context.Context, prefix string) (keys []string, err error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM records WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key",
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", mapError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}

		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}

	return keys, nil
}

// Close implements Store.Close by closing the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrConnDone) {
		return errors.Join(ErrStoreClosed, err)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// extended result codes keep the primary code in the low byte
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return errors.Join(ErrStoreBusy, err)
		default:
			break
		}
	}

	return err
}

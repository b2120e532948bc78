// Package store defines storage interfaces for small persisted UI state
// (key/value) and the dated snapshot archive, plus their implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"brvm/internal/domain"
)

// ErrNotFound is returned when an archived date or snapshot does not exist.
var ErrNotFound = errors.New("not found")

// KV persists string values under string keys.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Close releases the underlying resources.
	Close() error
}

// SnapshotArchive stores every scraped snapshot grouped by calendar date.
type SnapshotArchive interface {
	// WriteSnapshot appends snap to the archive for its date.
	WriteSnapshot(ctx context.Context, snap *domain.Snapshot) error

	// ListDates returns archived dates (YYYY-MM-DD), ascending.
	ListDates(ctx context.Context) ([]string, error)

	// ReadSnapshots returns the snapshots archived on date, oldest first.
	ReadSnapshots(ctx context.Context, date string) ([]domain.Snapshot, error)

	// LatestSnapshot returns the last snapshot archived on date.
	LatestSnapshot(ctx context.Context, date string) (*domain.Snapshot, error)
}

// Backend names accepted by OpenKV.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

// KVOptions selects and configures a KV backend.
type KVOptions struct {
	Backend       string
	SQLitePath    string
	FilePath      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// OpenKV opens the backend named in opts.
func OpenKV(ctx context.Context, opts KVOptions, log *slog.Logger) (KV, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		return NewSQLiteKV(opts.SQLitePath)
	case BackendFile:
		return NewFileKV(opts.FilePath, log)
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connecting to redis %s: %w", opts.RedisAddr, err)
		}
		return NewRedisKV(client, opts.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

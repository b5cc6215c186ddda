// Package db owns storage plumbing: the embedded SQLite database holding the
// company corpus and the optional Redis key-value store used as an embedding
// cache.
package db

import (
	"context"
	"time"
)

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides byte-value key-value operations with optional expiry.
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Package kv defines the durable key/value namespace the application state
// lives in, with SQLite, PostgreSQL, and in-memory implementations.
package kv

import (
	"context"
)

// Repository is a flat key/value store. Get returns (nil, nil) when the key
// is absent; Delete and Clear are idempotent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

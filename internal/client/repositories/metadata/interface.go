// Package metadata stores small named values in the local cache: persisted
// settings, the bearer token and the sync watermark. Keys are namespaced with
// a dotted prefix ("settings.", "auth.", "sync.").
package metadata

import (
	"context"
	"time"
)

type Repository interface {
	// Get returns the raw value of key, or (nil, nil) when it is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	GetString(ctx context.Context, key, def string) (string, error)
	SetString(ctx context.Context, key, value string) error

	// GetTime returns nil when key is absent.
	GetTime(ctx context.Context, key string) (*time.Time, error)
	SetTime(ctx context.Context, key string, t time.Time) error
}

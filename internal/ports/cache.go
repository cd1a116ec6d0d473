package ports

import (
	"context"
	"time"
)

// Cache defines a best-effort key-value capability for usecases.
// Adapters may be backed by SQLite/Redis or other stores. Cached values are
// never read inside a transaction that mutates the source of truth.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

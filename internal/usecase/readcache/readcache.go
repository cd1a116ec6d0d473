// Package readcache keeps read-through snapshots in a ports.Cache.
//
// Every key has a generation. Readers fetch the generation before touching
// the database and store what they read under it; writers retire the
// generation after commit. A snapshot read before a commit therefore lands
// under a generation nobody asks for again and is never served.
package readcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"catalogo/internal/errs"
	"catalogo/internal/ports"
)

const minGenerationTTL = 24 * time.Hour

type Cache struct {
	store ports.Cache
	ttl   time.Duration
}

// New returns a Cache whose snapshots live for ttl. A nil store disables it.
func New(store ports.Cache, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

// Lookup is the result of Get. Generation must be handed back to Put on a miss.
type Lookup struct {
	Generation string
	Found      bool
}

// Get decodes the snapshot for key into dst.
func (c *Cache) Get(ctx context.Context, key string, dst any) (Lookup, error) {
	if c == nil || c.store == nil {
		return Lookup{}, nil
	}
	generation, _, err := c.store.Get(ctx, generationKey(key))
	if err != nil {
		return Lookup{}, errs.Wrap(err, "read cache generation")
	}
	raw, found, err := c.store.Get(ctx, snapshotKey(key, generation))
	if err != nil {
		return Lookup{}, errs.Wrap(err, "read cache snapshot")
	}
	if !found || json.Unmarshal([]byte(raw), dst) != nil {
		return Lookup{Generation: generation}, nil
	}
	return Lookup{Generation: generation, Found: true}, nil
}

// Put stores value for key under the generation observed by Get.
func (c *Cache) Put(ctx context.Context, key string, generation string, value any) error {
	if c == nil || c.store == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return errs.Wrap(err, "encode cache snapshot")
	}
	return c.store.Set(ctx, snapshotKey(key, generation), string(raw), c.ttl)
}

// Invalidate retires the current generation of key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Set(ctx, generationKey(key), uuid.NewString(), max(minGenerationTTL, 2*c.ttl))
}

func generationKey(key string) string {
	return key + ":gen"
}

func snapshotKey(key string, generation string) string {
	if generation == "" {
		return key
	}
	return key + "@" + generation
}

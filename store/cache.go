package store

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/ronit-gandhi/meal-shame-tracker/metrics"
	"github.com/ronit-gandhi/meal-shame-tracker/models"
)

// MaxCacheTTL bounds how stale a listed snapshot may be.
const MaxCacheTTL = 60 * time.Second

const snapshotKey = "entries"

// Cached is a read-through cache of the full row list. Any successful write
// purges it so the next read sees that write. A read that missed before a
// purge never refills the cache with its older snapshot.
type Cached struct {
	next  Store
	cache *expirable.LRU[string, []models.MealEntry]

	mu  sync.Mutex
	gen uint64
}

func NewCached(next Store, ttl time.Duration) *Cached {
	if ttl <= 0 || ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}
	return &Cached{
		next:  next,
		cache: expirable.NewLRU[string, []models.MealEntry](1, nil, ttl),
	}
}

func (c *Cached) ListEntries(ctx context.Context) ([]models.MealEntry, error) {
	if entries, ok := c.cache.Get(snapshotKey); ok {
		metrics.RecordRowCache(true)
		return models.CloneEntries(entries), nil
	}
	metrics.RecordRowCache(false)

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	entries, err := c.next.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.cache.Add(snapshotKey, models.CloneEntries(entries))
	}
	c.mu.Unlock()
	return entries, nil
}

func (c *Cached) InsertEntry(ctx context.Context, in models.NewMealEntry) (string, error) {
	id, err := c.next.InsertEntry(ctx, in)
	if err != nil {
		return "", err
	}
	c.Invalidate()
	return id, nil
}

func (c *Cached) UpdateComments(ctx context.Context, id string, comments []models.Comment) error {
	if err := c.next.UpdateComments(ctx, id, comments); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// Invalidate drops the cached snapshot and discards any refill from a read
// that started before it.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.cache.Purge()
	c.mu.Unlock()
}

// LastSkipReport forwards to the wrapped backend when it reports skips.
func (c *Cached) LastSkipReport() SkipReport {
	if r, ok := c.next.(Reporter); ok {
		return r.LastSkipReport()
	}
	return SkipReport{}
}

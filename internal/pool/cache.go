package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abelbrown/dailycard/internal/codec"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/schedule"
	"github.com/abelbrown/dailycard/internal/store"
)

// CacheKey is the KV key of the last pool fetched from a remote source.
const CacheKey = "contentPool"

// CacheName is reported by Load when the cached pool was used.
const CacheName = "cache"

// Cache replays the last remote pool. The pool is stamped with the day it
// was fetched on so the same day always schedules over the same items.
type Cache struct {
	kv  store.KV
	day time.Time
}

// NewCache returns a Cache over kv that yields the cached pool whatever day
// it was stored on.
func NewCache(kv store.KV) *Cache {
	return &Cache{kv: kv}
}

// Pinned returns a Cache that yields the cached pool only when it was
// stored on now's calendar day.
func (c *Cache) Pinned(now time.Time) *Cache {
	return &Cache{kv: c.kv, day: now}
}

// Name implements Source.
func (c *Cache) Name() string {
	return CacheName
}

// Fetch implements Source. A missing cache, or a pinned cache from another
// day, yields no items and no error.
func (c *Cache) Fetch(ctx context.Context) ([]model.Item, error) {
	snap, err := c.load()
	if err != nil || snap == nil {
		return nil, err
	}
	if !c.day.IsZero() && !sameDay(*snap, c.day) {
		logging.Debug("pool: cache is from another day", "day", snap.DayOfYear, "year", snap.Year)
		return nil, nil
	}
	return snap.Items, nil
}

func (c *Cache) load() (*codec.PoolSnapshot, error) {
	b, err := c.kv.Get(CacheKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pool cache: %w", err)
	}
	snap, err := codec.DecodePoolSnapshot(b)
	if err != nil {
		return nil, fmt.Errorf("decode pool cache: %w", err)
	}
	return &snap, nil
}

// Save replaces the cached pool, stamped with now's day.
func (c *Cache) Save(items []model.Item, now time.Time) {
	snap := codec.PoolSnapshot{
		Items:     items,
		DayOfYear: schedule.DayOfYear(now),
		Year:      now.Year(),
	}
	if err := c.kv.Set(CacheKey, codec.EncodePoolSnapshot(snap)); err != nil {
		logging.Warn("pool: write cache", "error", err)
	}
}

func sameDay(s codec.PoolSnapshot, now time.Time) bool {
	return s.DayOfYear == schedule.DayOfYear(now) && s.Year == now.Year()
}

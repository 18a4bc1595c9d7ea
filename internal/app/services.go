// Package app wires dailycard's services from the loaded configuration.
// Both binaries start here.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/dailycard/internal/anchor"
	"github.com/abelbrown/dailycard/internal/appearance"
	"github.com/abelbrown/dailycard/internal/config"
	"github.com/abelbrown/dailycard/internal/entitlement"
	"github.com/abelbrown/dailycard/internal/favorites"
	"github.com/abelbrown/dailycard/internal/gate"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/paging"
	"github.com/abelbrown/dailycard/internal/pool"
	"github.com/abelbrown/dailycard/internal/schedule"
	"github.com/abelbrown/dailycard/internal/store"
	"github.com/abelbrown/dailycard/internal/ui"
)

// Services holds everything a front end needs. The pager is built on demand
// because constructing one charges the day's first view.
type Services struct {
	Config      *config.Config
	Store       store.KV
	Pool        []model.Item
	PoolSource  string
	Scheduler   *schedule.Scheduler
	Gate        *gate.Gate
	Favorites   *favorites.Store
	Appearance  *appearance.Settings
	Anchor      *anchor.Anchor
	Entitlement *entitlement.Source

	// Now defaults to time.Now.
	Now func() time.Time
}

// Open opens the configured store, loads the pool and builds the services
// on the wall clock.
func Open(ctx context.Context, cfg *config.Config) (*Services, error) {
	return OpenAt(ctx, cfg, time.Now)
}

// OpenAt is Open with the clock the services run on. The pool is pinned to
// the clock's current day.
func OpenAt(ctx context.Context, cfg *config.Config, now func() time.Time) (*Services, error) {
	if now == nil {
		now = time.Now
	}
	kv, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	items, source := LoadPool(ctx, cfg, kv, now())
	sched := schedule.New(items)
	g := gate.New(kv, GateLimits(cfg.Limits))

	return &Services{
		Config:      cfg,
		Store:       kv,
		Pool:        items,
		PoolSource:  source,
		Scheduler:   sched,
		Gate:        g,
		Favorites:   favorites.Load(kv),
		Appearance:  appearance.Load(kv, g),
		Anchor:      anchor.New(kv, sched),
		Entitlement: entitlement.NewSource(cfg.Entitlement.Premium),
		Now:         now,
	}, nil
}

func openStore(sc config.StoreConfig) (store.KV, error) {
	switch sc.Backend {
	case store.BackendMemory:
	case store.BackendBadger:
		if err := os.MkdirAll(sc.Path, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	default:
		if err := os.MkdirAll(filepath.Dir(sc.Path), 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	kv, err := store.OpenBackend(sc.Backend, sc.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", sc.Backend, err)
	}
	logging.Debug("app: store open", "backend", sc.Backend, "path", sc.Path)
	return kv, nil
}

// GateLimits maps the configured plan limits onto the gate.
func GateLimits(l config.LimitsConfig) gate.Limits {
	limits := gate.DefaultLimits()
	limits.FreeDailyViews = l.FreeDailyViews
	limits.PremiumDailyViews = l.PremiumDailyViews
	limits.FreeCollection = l.FreeCollection
	if l.DefaultFont != "" {
		limits.DefaultFeature = l.DefaultFont
	}
	return limits
}

// PagingConfig maps the configured pager tuning onto the controller.
func PagingConfig(l config.LimitsConfig) paging.Config {
	pc := paging.DefaultConfig()
	pc.PremiumCap = l.PremiumCap
	pc.FreeCap = l.FreeCap
	pc.FreeScrollAllowance = l.FreeScrollAllowance
	if l.ThresholdRatio > 0 {
		pc.ThresholdRatio = l.ThresholdRatio
	}
	if l.DeadZone > 0 {
		pc.DeadZone = l.DeadZone
	}
	return pc
}

// Sources builds the configured pool sources in priority order. A pool
// cached earlier on now's day comes before any network source, and the
// cache from any day comes last.
func Sources(ctx context.Context, cfg *config.Config, kv store.KV, now time.Time) []pool.Source {
	pc := cfg.Pool
	cache := pool.NewCache(kv)
	var sources []pool.Source
	if pc.File != "" {
		sources = append(sources, pool.NewFileSource(pc.File))
	}
	sources = append(sources, cache.Pinned(now))

	fetcher := pool.NewFetcher(time.Duration(pc.Timeout)*time.Second, pc.PerMinute)
	if pc.URL != "" {
		sources = append(sources, pool.NewHTTPSource(pc.URL, fetcher))
	}
	if pc.RSS != "" {
		sources = append(sources, pool.NewRSSSource(pc.RSS, fetcher))
	}
	if pc.Gemini.Enabled {
		src, err := pool.NewGeminiSource(ctx, pool.GeminiOptions{
			APIKey: pc.Gemini.APIKey,
			Model:  pc.Gemini.Model,
			Count:  pc.Gemini.Count,
			Topic:  pc.Gemini.Topic,
		})
		if err != nil {
			logging.Warn("app: gemini source disabled", "error", err)
		} else {
			sources = append(sources, src)
		}
	}
	return append(sources, cache)
}

// LoadPool loads the pool from the configured sources. Remote sources are
// only asked once per calendar day; what they return replaces the cache.
func LoadPool(ctx context.Context, cfg *config.Config, kv store.KV, now time.Time) ([]model.Item, string) {
	if cfg.Pool.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Pool.Timeout)*time.Second)
		defer cancel()
	}

	items, source := pool.Load(ctx, Sources(ctx, cfg, kv, now)...)
	switch source {
	case pool.CacheName, pool.FallbackName:
	default:
		pool.NewCache(kv).Save(items, now)
	}
	return items, source
}

// NewPager builds the pager over today's ordering and restores its position.
func (s *Services) NewPager() *paging.Controller {
	return paging.New(paging.Deps{
		Scheduler:   s.Scheduler,
		Gate:        s.Gate,
		Store:       s.Store,
		Entitlement: s.Entitlement,
		Now:         s.Now,
	}, PagingConfig(s.Config.Limits))
}

// UIDeps bundles the services for the terminal UI.
func (s *Services) UIDeps(pager *paging.Controller) ui.Deps {
	return ui.Deps{
		Pager:       pager,
		Favorites:   s.Favorites,
		Gate:        s.Gate,
		Appearance:  s.Appearance,
		Entitlement: s.Entitlement,
		Now:         s.Now,
	}
}

// Close closes the store.
func (s *Services) Close() error {
	return s.Store.Close()
}

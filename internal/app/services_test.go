package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/dailycard/internal/config"
	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/pool"
	"github.com/abelbrown/dailycard/internal/store"
)

const poolJSON = `[
  {"Quote": "One.", "Author": "A"},
  {"Quote": "Two.", "Author": "B"},
  {"Quote": "Three.", "Author": "C", "Category": "hope"}
]`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Backend = store.BackendSQLite
	cfg.Store.Path = filepath.Join(t.TempDir(), "data", "dailycard.db")
	cfg.Pool.Timeout = 5
	cfg.Pool.PerMinute = 0
	return cfg
}

func TestOpenWithFilePool(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pool.File = filepath.Join(t.TempDir(), "quotes.json")
	require.NoError(t, os.WriteFile(cfg.Pool.File, []byte(poolJSON), 0644))

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "file:"+cfg.Pool.File, s.PoolSource)
	assert.Len(t, s.Pool, 3)
	assert.Equal(t, 3, s.Scheduler.Size())
	assert.False(t, s.Entitlement.IsPaying())
}

func TestOpenFallsBackToBuiltin(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pool.File = filepath.Join(t.TempDir(), "missing.json")

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, pool.FallbackName, s.PoolSource)
	assert.Len(t, s.Pool, 20)
}

func TestRemotePoolIsCached(t *testing.T) {
	var down atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(poolJSON))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Pool.URL = srv.URL
	day := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)

	s, err := OpenAt(context.Background(), cfg, func() time.Time { return day })
	require.NoError(t, err)
	assert.Equal(t, "url:"+srv.URL, s.PoolSource)
	first := s.Pool
	require.NoError(t, s.Close())

	// offline the next day: yesterday's pool beats the builtin list
	down.Store(true)
	s, err = OpenAt(context.Background(), cfg, func() time.Time { return day.AddDate(0, 0, 1) })
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, pool.CacheName, s.PoolSource)
	require.Len(t, s.Pool, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, s.Pool[i].ID)
	}
}

// rotatingPool serves a different pool on every request, like an RSS feed
// or a generated batch would.
func rotatingPool(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		fmt.Fprintf(w, `[{"Quote": "Run%d one.", "Author": "A"}, {"Quote": "Run%d two.", "Author": "B"}, {"Quote": "Run%d three.", "Author": "C"}]`, n, n, n)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestSameDayRestartKeepsPool(t *testing.T) {
	srv, hits := rotatingPool(t)
	cfg := testConfig(t)
	cfg.Pool.URL = srv.URL
	morning := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)
	clock := func() time.Time { return morning }

	s, err := OpenAt(context.Background(), cfg, clock)
	require.NoError(t, err)
	assert.Equal(t, "url:"+srv.URL, s.PoolSource)
	s.Anchor.Sync(morning)
	first, ok := s.Scheduler.Anchor(morning)
	require.True(t, ok)
	require.NoError(t, s.Close())

	evening := morning.Add(11 * time.Hour)
	s, err = OpenAt(context.Background(), cfg, func() time.Time { return evening })
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, pool.CacheName, s.PoolSource)
	assert.Equal(t, int32(1), hits.Load(), "the remote source should be asked once per day")

	again, ok := s.Scheduler.Anchor(evening)
	require.True(t, ok)
	assert.Equal(t, first.ID, again.ID)

	// the pager's first card and the shared payload agree
	p := s.NewPager()
	shared, ok := s.Anchor.Resolve(evening)
	require.True(t, ok)
	assert.Equal(t, shared.ID, p.Current().Item.ID)
}

func TestNewDayRefetchesPool(t *testing.T) {
	srv, hits := rotatingPool(t)
	cfg := testConfig(t)
	cfg.Pool.URL = srv.URL
	day := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)

	s, err := OpenAt(context.Background(), cfg, func() time.Time { return day })
	require.NoError(t, err)
	require.NoError(t, s.Close())

	next := day.AddDate(0, 0, 1)
	s, err = OpenAt(context.Background(), cfg, func() time.Time { return next })
	require.NoError(t, err)
	assert.Equal(t, "url:"+srv.URL, s.PoolSource)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, "Run2 one.", s.Pool[0].Text)
	require.NoError(t, s.Close())

	// the refreshed pool is what the rest of the new day sees
	s, err = OpenAt(context.Background(), cfg, func() time.Time { return next.Add(time.Hour) })
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, pool.CacheName, s.PoolSource)
	assert.Equal(t, "Run2 one.", s.Pool[0].Text)
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "floppy"
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestGeminiWithoutKeyIsSkipped(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = store.BackendMemory
	cfg.Pool.Gemini.Enabled = true
	cfg.Pool.Gemini.APIKey = ""

	kv := store.NewMemory()
	sources := Sources(context.Background(), cfg, kv, time.Now())
	require.Len(t, sources, 2)
	for _, src := range sources {
		assert.Equal(t, pool.CacheName, src.Name())
	}
}

func TestLimitsMapping(t *testing.T) {
	l := config.DefaultConfig().Limits
	l.FreeDailyViews = 5
	l.FreeCollection = 7
	l.PremiumCap = 30
	l.FreeScrollAllowance = 4
	l.ThresholdRatio = 0

	g := GateLimits(l)
	assert.Equal(t, 5, g.FreeDailyViews)
	assert.Equal(t, 7, g.FreeCollection)
	assert.Equal(t, string(model.FontSerif), g.DefaultFeature)

	p := PagingConfig(l)
	assert.Equal(t, 30, p.PremiumCap)
	assert.Equal(t, 4, p.FreeScrollAllowance)
	assert.Equal(t, 0.25, p.ThresholdRatio)
}

func TestNewPagerPersistsAcrossOpens(t *testing.T) {
	cfg := testConfig(t)
	cfg.Entitlement.Premium = true
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	s.Now = func() time.Time { return now }

	p := s.NewPager()
	p.Forward()
	p.Forward()
	require.Equal(t, 2, p.Position())
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	s.Now = func() time.Time { return now.Add(time.Hour) }

	p = s.NewPager()
	assert.Equal(t, 2, p.Position())
	assert.Equal(t, 3, s.Gate.Count(now))

	deps := s.UIDeps(p)
	assert.Same(t, p, deps.Pager)
	assert.Same(t, s.Favorites, deps.Favorites)
}

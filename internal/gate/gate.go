// Package gate enforces the free plan's daily view cap, collection size and
// feature restrictions.
//
// The daily view count lives in a single global bucket keyed by the start of
// the local day. It only grows within a day and drops to zero exactly once
// when the day changes.
package gate

import (
	"errors"
	"time"

	"github.com/abelbrown/dailycard/internal/codec"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/schedule"
	"github.com/abelbrown/dailycard/internal/store"
)

// QuotaKey is the KV key of the persisted view quota.
const QuotaKey = "dailyViewQuota"

// Limits are the plan limits.
type Limits struct {
	FreeDailyViews    int
	PremiumDailyViews int
	FreeCollection    int
	// DefaultFeature is the one feature variant free users may use.
	DefaultFeature string
}

// DefaultLimits returns the stock plan limits.
func DefaultLimits() Limits {
	return Limits{
		FreeDailyViews:    3,
		PremiumDailyViews: 20,
		FreeCollection:    3,
		DefaultFeature:    string(model.DefaultAppearance.Font),
	}
}

// Gate tracks the view quota and answers plan questions.
type Gate struct {
	kv     store.KV
	limits Limits
	quota  codec.Quota
}

// New loads the persisted quota from kv. Missing or malformed bytes start
// from an empty quota.
func New(kv store.KV, limits Limits) *Gate {
	g := &Gate{kv: kv, limits: limits}
	g.load()
	return g
}

// Limits returns the configured limits.
func (g *Gate) Limits() Limits {
	return g.limits
}

func (g *Gate) load() {
	b, err := g.kv.Get(QuotaKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Warn("gate: read quota", "error", err)
		}
		return
	}
	q, err := codec.DecodeQuota(b, time.Local)
	if err != nil || q.Count < 0 {
		logging.Warn("gate: discarding malformed quota", "error", err)
		return
	}
	g.quota = q
}

func (g *Gate) save() {
	if err := g.kv.Set(QuotaKey, codec.EncodeQuota(g.quota)); err != nil {
		logging.Warn("gate: write quota", "error", err)
	}
}

// ResetIfNeeded zeroes the count when now falls on a different day than the
// stored day key.
func (g *Gate) ResetIfNeeded(now time.Time) {
	today := schedule.StartOfDay(now)
	if !g.quota.DayKey.IsZero() && schedule.StartOfDay(g.quota.DayKey.In(now.Location())).Equal(today) {
		return
	}
	logging.Debug("gate: new quota day", "day", today.Format("2006-01-02"), "previous", g.quota.Count)
	g.quota = codec.Quota{Count: 0, DayKey: today}
	g.save()
}

// DailyLimit returns the view cap for the plan.
func (g *Gate) DailyLimit(paying bool) int {
	if paying {
		return g.limits.PremiumDailyViews
	}
	return g.limits.FreeDailyViews
}

// RegisterViewIfAllowed counts one view and returns true, or returns false
// without counting when the day's cap is already reached.
func (g *Gate) RegisterViewIfAllowed(now time.Time, paying bool) bool {
	g.ResetIfNeeded(now)
	limit := g.DailyLimit(paying)
	if g.quota.Count >= limit {
		logging.Debug("gate: view denied", "count", g.quota.Count, "limit", limit, "paying", paying)
		return false
	}
	g.quota.Count++
	g.save()
	return true
}

// Count returns today's view count.
func (g *Gate) Count(now time.Time) int {
	g.ResetIfNeeded(now)
	return g.quota.Count
}

// Remaining returns how many views are left today for the plan.
func (g *Gate) Remaining(now time.Time, paying bool) int {
	g.ResetIfNeeded(now)
	left := g.DailyLimit(paying) - g.quota.Count
	if left < 0 {
		return 0
	}
	return left
}

// CanAddToCollection reports whether a collection of currentSize may grow.
func (g *Gate) CanAddToCollection(currentSize int, paying bool) bool {
	if paying {
		return true
	}
	return currentSize < g.limits.FreeCollection
}

// CanUseFeature reports whether feature is available on the plan.
func (g *Gate) CanUseFeature(feature string, paying bool) bool {
	if paying {
		return true
	}
	return feature == g.limits.DefaultFeature
}

// CanUseFont is CanUseFeature for card fonts.
func (g *Gate) CanUseFont(font model.FontFamily, paying bool) bool {
	return g.CanUseFeature(string(font), paying)
}

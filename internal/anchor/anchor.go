// Package anchor mirrors the day's first card into shared storage so a
// secondary surface that cannot run the scheduler can still show it.
package anchor

import (
	"errors"
	"time"

	"github.com/abelbrown/dailycard/internal/codec"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/schedule"
	"github.com/abelbrown/dailycard/internal/store"
)

// Key is the KV key of the shared anchor payload.
const Key = "dailyQuoteOfToday"

// Notice tells the secondary surface to re-render. Changed is false when the
// payload is the one it already has.
type Notice struct {
	Changed bool
	Payload codec.Anchor
}

// Anchor keeps the shared payload in step with the scheduler.
type Anchor struct {
	kv          store.KV
	sched       *schedule.Scheduler
	subscribers []func(Notice)

	// NotifyUnchanged also notifies on Sync calls that found a valid payload.
	NotifyUnchanged bool
}

// New returns an Anchor writing to kv.
func New(kv store.KV, sched *schedule.Scheduler) *Anchor {
	return &Anchor{kv: kv, sched: sched}
}

// Subscribe registers fn for re-render notices.
func (a *Anchor) Subscribe(fn func(Notice)) {
	a.subscribers = append(a.subscribers, fn)
}

// Load returns the stored payload, if any decodes.
func Load(kv store.KV) (codec.Anchor, bool) {
	b, err := kv.Get(Key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Warn("anchor: read", "error", err)
		}
		return codec.Anchor{}, false
	}
	p, err := codec.DecodeAnchor(b)
	if err != nil || p.Item.ID == "" {
		logging.Warn("anchor: discarding malformed payload", "error", err)
		return codec.Anchor{}, false
	}
	return p, true
}

// ValidFor reports whether p belongs to now's calendar day.
func ValidFor(p codec.Anchor, now time.Time) bool {
	return p.DayOfYear == schedule.DayOfYear(now) && p.Year == now.Year()
}

// Resolve returns the stored card when it is still today's. It needs only
// the store, so surfaces without the pool can call it.
func Resolve(kv store.KV, now time.Time) (model.Item, bool) {
	p, ok := Load(kv)
	if !ok || !ValidFor(p, now) {
		return model.Item{}, false
	}
	return p.Item, true
}

// Resolve is the package-level Resolve over a's store.
func (a *Anchor) Resolve(now time.Time) (model.Item, bool) {
	return Resolve(a.kv, now)
}

// Sync makes sure the stored payload is today's. It returns true when it
// wrote a new payload. Calling it again on the same day changes nothing.
func (a *Anchor) Sync(now time.Time) bool {
	if p, ok := Load(a.kv); ok && ValidFor(p, now) {
		if a.NotifyUnchanged {
			a.notify(Notice{Changed: false, Payload: p})
		}
		return false
	}

	item, ok := a.sched.Anchor(now)
	if !ok {
		logging.Debug("anchor: empty pool, nothing to share")
		return false
	}

	p := codec.Anchor{Item: item, DayOfYear: schedule.DayOfYear(now), Year: now.Year()}
	if err := a.kv.Set(Key, codec.EncodeAnchor(p)); err != nil {
		logging.Warn("anchor: write", "error", err)
	}
	logging.Info("anchor: synced", "id", item.ID, "day", p.DayOfYear, "year", p.Year)
	a.notify(Notice{Changed: true, Payload: p})
	return true
}

func (a *Anchor) notify(n Notice) {
	for _, fn := range a.subscribers {
		fn(n)
	}
}

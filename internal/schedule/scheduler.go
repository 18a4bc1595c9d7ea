// Package schedule derives the day's card ordering from the calendar date.
//
// Everything here is a pure function of (pool, date, cap): the same local
// calendar day always yields the same seed, the same anchor card and the same
// ordering, no matter the time of day or how often it is recomputed.
package schedule

import (
	"time"

	"github.com/abelbrown/dailycard/internal/model"
)

// goldenConstant is the 64-bit golden ratio used to spread small seeds.
const goldenConstant uint64 = 0x9E3779B97F4A7C15

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayOfYear returns the ordinal day (1-366) of t's local calendar day.
func DayOfYear(t time.Time) int {
	return StartOfDay(t).YearDay()
}

// SeedValue mixes a day seed and the pool size into a generator seed.
func SeedValue(seed, total int) uint64 {
	a := uint64(seed & 0xFFFF)
	b := uint64(total & 0xFFFF)
	return (a << 32) ^ (b << 16) ^ goldenConstant
}

// Scheduler computes daily orderings over a fixed pool.
type Scheduler struct {
	pool []model.Item
}

// New returns a Scheduler over pool. The slice is copied; later changes to
// the caller's slice do not affect the schedule.
func New(pool []model.Item) *Scheduler {
	cp := make([]model.Item, len(pool))
	copy(cp, pool)
	return &Scheduler{pool: cp}
}

// Size returns the number of items in the pool.
func (s *Scheduler) Size() int {
	return len(s.pool)
}

// Item returns the pool item at index, or false when out of range.
func (s *Scheduler) Item(index int) (model.Item, bool) {
	if index < 0 || index >= len(s.pool) {
		return model.Item{}, false
	}
	return s.pool[index], true
}

// DaySeed returns the seed of t's calendar day.
func (s *Scheduler) DaySeed(t time.Time) int {
	return DayOfYear(t)
}

// AnchorIndex returns the pool index of the day's anchor card. It is 0 for
// an empty pool and must not be dereferenced in that case.
func (s *Scheduler) AnchorIndex(t time.Time) int {
	n := len(s.pool)
	if n < 1 {
		n = 1
	}
	return s.DaySeed(t) % n
}

// Anchor returns the day's anchor card, or false when the pool is empty.
func (s *Scheduler) Anchor(t time.Time) (model.Item, bool) {
	if len(s.pool) == 0 {
		return model.Item{}, false
	}
	return s.pool[s.AnchorIndex(t)], true
}

// Ordering returns the pool indices to show on t's day, anchor first,
// at most limit entries long. An empty pool or a non-positive limit yields
// an empty ordering.
func (s *Scheduler) Ordering(t time.Time, limit int) []int {
	n := len(s.pool)
	if n == 0 || limit <= 0 {
		return []int{}
	}

	anchor := s.AnchorIndex(t)
	others := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != anchor {
			others = append(others, i)
		}
	}

	gen := NewGenerator(SeedValue(anchor, n))
	gen.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	if len(others) > limit-1 {
		others = others[:limit-1]
	}

	order := make([]int, 0, len(others)+1)
	order = append(order, anchor)
	return append(order, others...)
}

// Items resolves an ordering to its cards.
func (s *Scheduler) Items(order []int) []model.Item {
	items := make([]model.Item, 0, len(order))
	for _, idx := range order {
		if it, ok := s.Item(idx); ok {
			items = append(items, it)
		}
	}
	return items
}

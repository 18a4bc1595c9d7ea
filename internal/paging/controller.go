// Package paging walks the day's ordering one card at a time.
//
// Controller is a small state machine: a committed position, a transient
// drag offset and a dragging flag. Drags are previewed freely and only the
// end of a gesture can commit a move. Forward moves into never-seen
// positions are charged against the daily view quota once; moving back and
// forward again over seen positions is free.
package paging

import (
	"errors"
	"math"
	"time"

	"github.com/abelbrown/dailycard/internal/codec"
	"github.com/abelbrown/dailycard/internal/entitlement"
	"github.com/abelbrown/dailycard/internal/gate"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/schedule"
	"github.com/abelbrown/dailycard/internal/store"
)

// PositionKey is the KV key of the persisted pager position.
const PositionKey = "feedPosition"

// Config parameterises the pager for a plan.
type Config struct {
	// PremiumCap and FreeCap bound the day's ordering length per plan.
	PremiumCap int
	FreeCap    int
	// FreeScrollAllowance is how many positions (from 0) a free user may reach.
	FreeScrollAllowance int
	// ThresholdRatio of the viewport extent a drag must cross to commit.
	ThresholdRatio float64
	// DeadZone is the movement ignored before a drag starts.
	DeadZone float64
	// RubberBand scales the displayed offset when dragging past either end.
	RubberBand float64
}

// DefaultConfig returns the stock pager settings.
func DefaultConfig() Config {
	return Config{
		PremiumCap:          20,
		FreeCap:             20,
		FreeScrollAllowance: 3,
		ThresholdRatio:      0.25,
		DeadZone:            20,
		RubberBand:          0.3,
	}
}

// Deps are the services the controller consults.
type Deps struct {
	Scheduler   *schedule.Scheduler
	Gate        *gate.Gate
	Store       store.KV
	Entitlement entitlement.Snapshot
	// Now defaults to time.Now.
	Now func() time.Time
}

// Controller is the pager state machine.
type Controller struct {
	cfg   Config
	sched *schedule.Scheduler
	gate  *gate.Gate
	kv    store.KV
	ent   entitlement.Snapshot
	now   func() time.Time

	daySeed int
	year    int

	orderCap int
	order    []int

	position int
	// furthest is the high-water mark; -1 until position 0 has been charged.
	furthest int

	dragOffset float64
	dragging   bool
	viewport   float64
}

// New builds a controller and loads its persisted position.
func New(deps Deps, cfg Config) *Controller {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	ent := deps.Entitlement
	if ent == nil {
		ent = entitlement.Static(false)
	}
	c := &Controller{
		cfg:      cfg,
		sched:    deps.Scheduler,
		gate:     deps.Gate,
		kv:       deps.Store,
		ent:      ent,
		now:      now,
		furthest: -1,
		viewport: 1,
	}
	c.load()
	return c
}

// load restores the persisted position when it belongs to today, and starts
// the day fresh otherwise.
func (c *Controller) load() {
	now := c.now()
	c.gate.ResetIfNeeded(now)

	p, ok := c.readPosition()
	if !ok || p.DaySeed != c.sched.DaySeed(now) || p.Year != now.Year() {
		c.Reset(now)
		return
	}
	c.daySeed, c.year = p.DaySeed, p.Year
	c.furthest = p.Furthest
	c.Restore(p.Index)
}

func (c *Controller) readPosition() (codec.Position, bool) {
	b, err := c.kv.Get(PositionKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Warn("paging: read position", "error", err)
		}
		return codec.Position{}, false
	}
	p, err := codec.DecodePosition(b)
	if err != nil {
		logging.Warn("paging: discarding malformed position", "error", err)
		return codec.Position{}, false
	}
	return p, true
}

func (c *Controller) save() {
	p := codec.Position{Index: c.position, Furthest: c.furthest, DaySeed: c.daySeed, Year: c.year}
	if err := c.kv.Set(PositionKey, codec.EncodePosition(p)); err != nil {
		logging.Warn("paging: write position", "error", err)
	}
}

// Reset starts now's day from the anchor card: position and high-water mark
// go back to 0 and the quota is rolled over if the day changed.
func (c *Controller) Reset(now time.Time) {
	c.gate.ResetIfNeeded(now)
	c.daySeed = c.sched.DaySeed(now)
	c.year = now.Year()
	c.order = nil
	c.position = 0
	c.furthest = -1
	c.dragOffset = 0
	c.dragging = false

	if len(c.ordering()) > 0 {
		// the anchor card is always shown; its view is charged best-effort
		c.gate.RegisterViewIfAllowed(now, c.ent.IsPaying())
		c.furthest = 0
	}
	logging.Debug("paging: reset", "day", c.daySeed, "year", c.year, "length", len(c.order))
	c.save()
}

// CheckDay resets the pager when now falls on a new calendar day. It returns
// true when a reset happened.
func (c *Controller) CheckDay(now time.Time) bool {
	if c.sched.DaySeed(now) == c.daySeed && now.Year() == c.year {
		return false
	}
	c.Reset(now)
	return true
}

// Restore moves to a persisted index, clamped into range.
func (c *Controller) Restore(index int) {
	total := c.Total()
	switch {
	case total == 0:
		c.position = 0
	case index < 0:
		c.position = 0
	case index > total-1:
		c.position = total - 1
	default:
		c.position = index
	}
	if c.position > c.furthest && total > 0 {
		c.furthest = c.position
	}
	c.save()
}

// ordering returns today's ordering for the current plan, recomputing it
// only when the cap changes.
func (c *Controller) ordering() []int {
	limit := c.cap()
	if c.order == nil || c.orderCap != limit {
		c.order = c.sched.Ordering(c.dayTime(), limit)
		c.orderCap = limit
	}
	return c.order
}

// dayTime returns a time on the controller's current day.
func (c *Controller) dayTime() time.Time {
	loc := c.now().Location()
	return time.Date(c.year, time.January, 1, 12, 0, 0, 0, loc).AddDate(0, 0, c.daySeed-1)
}

func (c *Controller) cap() int {
	if c.ent.IsPaying() {
		return c.cfg.PremiumCap
	}
	return c.cfg.FreeCap
}

// hasEndCard reports whether a paying user gets the terminal position: only
// once the ordering has been filled up to the plan cap.
func (c *Controller) hasEndCard() bool {
	n := len(c.ordering())
	return c.ent.IsPaying() && n > 0 && n >= c.cfg.PremiumCap
}

// Len is the number of real cards in today's ordering.
func (c *Controller) Len() int {
	return len(c.ordering())
}

// Total is Len plus the terminal position, if any.
func (c *Controller) Total() int {
	if c.hasEndCard() {
		return c.Len() + 1
	}
	return c.Len()
}

// Position returns the committed position.
func (c *Controller) Position() int {
	return c.clampedPosition()
}

// clampedPosition keeps the position in range after a plan downgrade
// shortened the ordering.
func (c *Controller) clampedPosition() int {
	total := c.Total()
	if total == 0 {
		return 0
	}
	if c.position > total-1 {
		c.position = total - 1
	}
	return c.position
}

// Furthest returns the high-water mark, -1 before any card was reached.
func (c *Controller) Furthest() int {
	return c.furthest
}

// Ordering returns a copy of today's ordering.
func (c *Controller) Ordering() []int {
	order := c.ordering()
	out := make([]int, len(order))
	copy(out, order)
	return out
}

// Current returns the card at the committed position.
func (c *Controller) Current() Card {
	return c.cardAt(c.clampedPosition())
}

// Peek returns the card at pos, or false when pos is out of range. The
// renderer uses it for the neighbours shown during a drag.
func (c *Controller) Peek(pos int) (Card, bool) {
	if pos < 0 || pos >= c.Total() {
		return Card{}, false
	}
	return c.cardAt(pos), true
}

func (c *Controller) cardAt(pos int) Card {
	order := c.ordering()
	if len(order) == 0 {
		return Card{Kind: KindEmpty}
	}
	if pos >= len(order) {
		return Card{Kind: KindEnd, Position: pos}
	}
	item, _ := c.sched.Item(order[pos])
	return Card{Kind: KindItem, Item: item, Position: pos, PoolIndex: order[pos]}
}

// SetViewport records the extent of the paging axis.
func (c *Controller) SetViewport(extent float64) {
	if extent > 0 {
		c.viewport = extent
	}
}

// Threshold is the drag distance a gesture must cross to commit.
func (c *Controller) Threshold() float64 {
	return c.cfg.ThresholdRatio * c.viewport
}

// Drag feeds the gesture's cumulative translation. A gesture starts only
// once it leaves the dead zone along the paging axis; after that every
// frame moves the offset.
func (c *Controller) Drag(dx, dy float64) {
	if c.dragging {
		c.dragOffset = dy
		return
	}
	if math.Hypot(dx, dy) < c.cfg.DeadZone {
		return
	}
	if math.Abs(dy) <= math.Abs(dx) {
		return
	}
	c.dragging = true
	c.dragOffset = dy
}

// Dragging reports whether a paging gesture is in progress.
func (c *Controller) Dragging() bool {
	return c.dragging
}

// Offset returns the raw drag offset.
func (c *Controller) Offset() float64 {
	return c.dragOffset
}

// DisplayOffset is the offset to draw: damped when pulling past either end.
func (c *Controller) DisplayOffset() float64 {
	off := c.dragOffset
	pos := c.clampedPosition()
	pastStart := off > 0 && pos == 0
	pastEnd := off < 0 && pos+1 >= c.Total()
	if pastStart || pastEnd {
		return off * c.cfg.RubberBand
	}
	return off
}

// EndDrag finishes the gesture. translation is where the pointer ended,
// predicted where momentum would have carried it; crossing the threshold
// with either counts.
func (c *Controller) EndDrag(translation, predicted float64) Outcome {
	started := c.dragging
	c.dragging = false
	c.dragOffset = 0
	if !started {
		return SprungBack
	}

	t := c.Threshold()
	switch {
	case translation < -t || predicted < -t:
		return c.Forward()
	case translation > t || predicted > t:
		return c.Backward()
	default:
		return SprungBack
	}
}

// Cancel abandons a gesture without committing.
func (c *Controller) Cancel() {
	c.dragging = false
	c.dragOffset = 0
}

// Forward tries to move to the next position.
func (c *Controller) Forward() Outcome {
	now := c.now()
	paying := c.ent.IsPaying()
	pos := c.clampedPosition()
	next := pos + 1

	if next >= c.Total() {
		return AtEnd
	}
	if !paying && next >= c.cfg.FreeScrollAllowance {
		logging.Debug("paging: free allowance reached", "next", next)
		return PaywallRequired
	}
	if next > c.furthest && next < c.Len() {
		if !c.gate.RegisterViewIfAllowed(now, paying) {
			logging.Debug("paging: daily quota exhausted", "next", next)
			return QuotaExhausted
		}
	}
	if next > c.furthest {
		c.furthest = next
	}
	c.position = next
	c.save()
	return Advanced
}

// Backward tries to move to the previous position.
func (c *Controller) Backward() Outcome {
	pos := c.clampedPosition()
	if pos <= 0 {
		return AtStart
	}
	c.position = pos - 1
	c.save()
	return Retreated
}

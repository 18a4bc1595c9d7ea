// Package coord runs the background day watcher for dailycard.
package coord

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/dailycard/internal/anchor"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/schedule"
	"github.com/abelbrown/dailycard/internal/ui"
)

// checkInterval is the time between day checks.
const checkInterval = time.Minute

// Sender delivers messages to the UI. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Coordinator keeps the shared anchor payload current and tells the UI when
// the calendar day rolls over. It never touches the pager itself; the UI
// goroutine owns it.
// Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	anchor   *anchor.Anchor
	sched    *schedule.Scheduler
	now      func() time.Time
	interval time.Duration

	mu      sync.Mutex
	daySeed int
	year    int

	g errgroup.Group
}

// NewCoordinator creates a Coordinator checking once a minute.
func NewCoordinator(a *anchor.Anchor, sched *schedule.Scheduler) *Coordinator {
	return NewCoordinatorWithClock(a, sched, time.Now, checkInterval)
}

// NewCoordinatorWithClock allows injecting a clock and interval (for testing).
func NewCoordinatorWithClock(a *anchor.Anchor, sched *schedule.Scheduler, now func() time.Time, interval time.Duration) *Coordinator {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = checkInterval
	}
	return &Coordinator{anchor: a, sched: sched, now: now, interval: interval}
}

// Start syncs the anchor immediately, then checks the day on every tick.
// program may be nil when no UI is attached.
func (c *Coordinator) Start(ctx context.Context, program Sender) {
	c.remember(c.now())
	c.anchor.Sync(c.now())

	c.g.Go(func() error {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				c.check(program)
			}
		}
	})
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	_ = c.g.Wait()
}

// check syncs the anchor and reports a new day to the UI. It returns true
// when the day changed since the last check.
func (c *Coordinator) check(program Sender) bool {
	now := c.now()
	c.anchor.Sync(now)

	if !c.remember(now) {
		return false
	}
	logging.Info("coord: day rolled over", "date", now.Format("2006-01-02"))
	if program != nil {
		program.Send(ui.DayChanged{Now: now})
	}
	return true
}

// remember records now's day and reports whether it differs from the last
// one seen.
func (c *Coordinator) remember(now time.Time) bool {
	seed, year := c.sched.DaySeed(now), now.Year()

	c.mu.Lock()
	defer c.mu.Unlock()
	if seed == c.daySeed && year == c.year {
		return false
	}
	first := c.daySeed == 0
	c.daySeed, c.year = seed, year
	return !first
}

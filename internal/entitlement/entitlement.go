// Package entitlement holds the latest "is paying user" snapshot. The
// commerce side pushes updates on its own schedule; the core only reads.
package entitlement

import (
	"sync"
	"sync/atomic"
)

// Snapshot is the read side consulted at decision time.
type Snapshot interface {
	IsPaying() bool
}

// Static is a fixed snapshot.
type Static bool

// IsPaying implements Snapshot.
func (s Static) IsPaying() bool { return bool(s) }

// Source is a Snapshot that can be updated from another goroutine.
type Source struct {
	paying atomic.Bool

	mu          sync.Mutex
	subscribers []func(bool)
}

// NewSource returns a Source starting at paying.
func NewSource(paying bool) *Source {
	s := &Source{}
	s.paying.Store(paying)
	return s
}

// IsPaying implements Snapshot.
func (s *Source) IsPaying() bool {
	return s.paying.Load()
}

// Set publishes a new snapshot. Subscribers are called only when the value
// actually changes.
func (s *Source) Set(paying bool) {
	if s.paying.Swap(paying) == paying {
		return
	}
	s.mu.Lock()
	subs := make([]func(bool), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(paying)
	}
}

// Subscribe registers fn for snapshot changes.
func (s *Source) Subscribe(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

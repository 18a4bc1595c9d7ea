package widget

import (
	"sync"

	"github.com/abelbrown/dailycard/internal/anchor"
)

// subscriberBuffer bounds how far a slow stream may lag before notices to
// it are dropped.
const subscriberBuffer = 4

// hub fans anchor notices out to connected event streams.
type hub struct {
	mu   sync.Mutex
	subs map[chan anchor.Notice]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan anchor.Notice]struct{})}
}

func (h *hub) subscribe() chan anchor.Notice {
	ch := make(chan anchor.Notice, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan anchor.Notice) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// publish never blocks; a full subscriber misses the notice and picks up
// the current card on its next request.
func (h *hub) publish(n anchor.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

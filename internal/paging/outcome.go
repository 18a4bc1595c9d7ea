package paging

import "github.com/abelbrown/dailycard/internal/model"

// Outcome is the result of a finished gesture or key press.
type Outcome int

const (
	// SprungBack: the gesture did not cross the threshold.
	SprungBack Outcome = iota
	// Advanced: position moved forward by one.
	Advanced
	// Retreated: position moved back by one.
	Retreated
	// AtEnd: forward at the last position, nothing to show.
	AtEnd
	// AtStart: backward at position 0.
	AtStart
	// PaywallRequired: a free user tried to pass the free allowance.
	PaywallRequired
	// QuotaExhausted: the daily view quota refused a new card.
	QuotaExhausted
)

var outcomeNames = [...]string{
	SprungBack:      "sprung-back",
	Advanced:        "advanced",
	Retreated:       "retreated",
	AtEnd:           "at-end",
	AtStart:         "at-start",
	PaywallRequired: "paywall-required",
	QuotaExhausted:  "quota-exhausted",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Committed reports whether the position changed.
func (o Outcome) Committed() bool {
	return o == Advanced || o == Retreated
}

// Paywall reports whether the UI should offer an upgrade. Boundary outcomes
// never do.
func (o Outcome) Paywall() bool {
	return o == PaywallRequired || o == QuotaExhausted
}

// Kind tells the renderer what a position holds.
type Kind int

const (
	// KindEmpty: the pool is empty; nothing to show today.
	KindEmpty Kind = iota
	// KindItem: a real card.
	KindItem
	// KindEnd: the terminal "that's it for now" position.
	KindEnd
)

// Card is one pager position.
type Card struct {
	Kind      Kind
	Item      model.Item
	Position  int
	PoolIndex int
}

// IsAnchor reports whether the card is the day's first card.
func (c Card) IsAnchor() bool {
	return c.Kind == KindItem && c.Position == 0
}

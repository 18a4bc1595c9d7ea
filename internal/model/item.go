// Package model holds the content types shared by the scheduler, the pager
// and the persistence layer.
package model

// Item is one card of content. Items are immutable once created and are
// identified by ID alone; two items with the same ID are the same card even
// if their text or author differ.
type Item struct {
	ID       string
	Text     string
	Author   string
	Category *string
}

// CategoryOr returns the item's category, or fallback when it has none.
func (i Item) CategoryOr(fallback string) string {
	if i.Category == nil || *i.Category == "" {
		return fallback
	}
	return *i.Category
}

// Same reports whether i and other are the same card.
func (i Item) Same(other Item) bool {
	return i.ID == other.ID
}

// StringPtr is a helper for building items with a category literal.
func StringPtr(s string) *string {
	return &s
}

// Initial is shown when the pool is empty and a card must still be drawn.
var Initial = Item{
	ID:       "initial-1",
	Text:     "Every moment is a fresh beginning.",
	Author:   "T.S. Eliot",
	Category: StringPtr("Inspiration"),
}

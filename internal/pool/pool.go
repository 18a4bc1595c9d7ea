// Package pool loads the content pool the scheduler walks.
//
// Sources are tried in order and the first one that yields at least one item
// wins. When every source fails or comes back empty the built-in list is
// used, so the pool is only ever empty when a caller asks for that.
package pool

import (
	"context"

	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/model"
)

// Source produces pool items.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

// FallbackName is reported by Load when no source produced items.
const FallbackName = "builtin"

// Load returns the items of the first source that yields any, along with
// that source's name.
func Load(ctx context.Context, sources ...Source) ([]model.Item, string) {
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		items, err := src.Fetch(ctx)
		if err != nil {
			logging.Warn("pool: source failed", "source", src.Name(), "error", err)
			continue
		}
		if len(items) == 0 {
			logging.Debug("pool: source empty", "source", src.Name())
			continue
		}
		logging.Info("pool: loaded", "source", src.Name(), "items", len(items))
		return items, src.Name()
	}
	return Fallback(), FallbackName
}

// Limit returns at most n items from the front of items. n <= 0 means all.
func Limit(items []model.Item, n int) []model.Item {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

// Fallback returns a fresh copy of the built-in pool.
func Fallback() []model.Item {
	out := make([]model.Item, len(fallback))
	copy(out, fallback)
	return out
}

func quote(id, text, author, category string) model.Item {
	return model.Item{ID: id, Text: text, Author: author, Category: model.StringPtr(category)}
}

var fallback = []model.Item{
	quote("local-1", "Every moment is a fresh beginning.", "T.S. Eliot", "Inspiration"),
	quote("local-2", "The only way to do great work is to love what you do.", "Steve Jobs", "Success"),
	quote("local-3", "Life is what happens when you're busy making other plans.", "John Lennon", "Life"),
	quote("local-4", "It always seems impossible until it's done.", "Nelson Mandela", "Resilience"),
	quote("local-5", "The future belongs to those who believe in the beauty of their dreams.", "Eleanor Roosevelt", "Dreams"),
	quote("local-6", "Be yourself; everyone else is already taken.", "Oscar Wilde", "Authenticity"),
	quote("local-7", "So many books, so little time.", "Frank Zappa", "Learning"),
	quote("local-8", "Be the change that you wish to see in the world.", "Mahatma Gandhi", "Change"),
	quote("local-9", "In three words I can sum up everything I've learned about life: it goes on.", "Robert Frost", "Life"),
	quote("local-10", "If you tell the truth, you don't have to remember anything.", "Mark Twain", "Honesty"),
	quote("local-11", "Two roads diverged in a wood, and I took the one less traveled by, and that has made all the difference.", "Robert Frost", "Choices"),
	quote("local-12", "The only impossible journey is the one you never begin.", "Tony Robbins", "Motivation"),
	quote("local-13", "Success is not final, failure is not fatal: it is the courage to continue that counts.", "Winston Churchill", "Perseverance"),
	quote("local-14", "The way to get started is to quit talking and begin doing.", "Walt Disney", "Action"),
	quote("local-15", "Don't be afraid to give up the good to go for the great.", "John D. Rockefeller", "Ambition"),
	quote("local-16", "Innovation distinguishes between a leader and a follower.", "Steve Jobs", "Innovation"),
	quote("local-17", "The greatest glory in living lies not in never falling, but in rising every time we fall.", "Nelson Mandela", "Resilience"),
	quote("local-18", "Your time is limited, don't waste it living someone else's life.", "Steve Jobs", "Authenticity"),
	quote("local-19", "The only person you are destined to become is the person you decide to be.", "Ralph Waldo Emerson", "Self-Determination"),
	quote("local-20", "Go confidently in the direction of your dreams. Live the life you have imagined.", "Henry David Thoreau", "Dreams"),
}

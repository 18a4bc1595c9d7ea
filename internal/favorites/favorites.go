// Package favorites keeps the user's saved cards.
//
// Store is a plain data container: it does not consult the plan. Callers
// that add a card must check gate.Gate.CanAddToCollection first.
package favorites

import (
	"errors"

	"github.com/abelbrown/dailycard/internal/codec"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/store"
)

// Key is the KV key of the persisted favorites list.
const Key = "favorites"

// Store is an ordered set of cards, unique by ID.
type Store struct {
	kv          store.KV
	items       []model.Item
	subscribers []func([]model.Item)
}

// Load reads the favorites list from kv. Missing or malformed bytes yield an
// empty list.
func Load(kv store.KV) *Store {
	s := &Store{kv: kv, items: []model.Item{}}

	b, err := kv.Get(Key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Warn("favorites: read", "error", err)
		}
		return s
	}
	items, err := codec.DecodeItems(b)
	if err != nil {
		logging.Warn("favorites: discarding malformed list", "error", err)
		return s
	}
	s.items = dedup(items)
	return s
}

func dedup(items []model.Item) []model.Item {
	seen := make(map[string]bool, len(items))
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

// Subscribe registers fn to be called with the new list after every change.
func (s *Store) Subscribe(fn func([]model.Item)) {
	s.subscribers = append(s.subscribers, fn)
}

// Items returns a copy of the saved cards in insertion order.
func (s *Store) Items() []model.Item {
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of saved cards.
func (s *Store) Len() int {
	return len(s.items)
}

// IsFavorite reports whether a card with item's ID is saved.
func (s *Store) IsFavorite(item model.Item) bool {
	return s.index(item.ID) >= 0
}

// Toggle removes item if saved, appends it otherwise. It returns whether the
// item is saved afterwards.
func (s *Store) Toggle(item model.Item) bool {
	if i := s.index(item.ID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.changed()
		return false
	}
	s.items = append(s.items, item)
	s.changed()
	return true
}

// Remove deletes item if saved.
func (s *Store) Remove(item model.Item) {
	i := s.index(item.ID)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.changed()
}

func (s *Store) index(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) changed() {
	if err := s.kv.Set(Key, codec.EncodeItems(s.items)); err != nil {
		logging.Warn("favorites: write", "error", err)
	}
	for _, fn := range s.subscribers {
		fn(s.Items())
	}
}

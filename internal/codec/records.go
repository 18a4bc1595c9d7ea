package codec

import (
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/abelbrown/dailycard/internal/model"
)

// Item fields.
const (
	itemID       protowire.Number = 1
	itemText     protowire.Number = 2
	itemAuthor   protowire.Number = 3
	itemCategory protowire.Number = 4
)

// EncodeItem encodes a single card.
func EncodeItem(it model.Item) []byte {
	var b []byte
	b = appendString(b, itemID, it.ID)
	b = appendString(b, itemText, it.Text)
	b = appendString(b, itemAuthor, it.Author)
	if it.Category != nil {
		// written even when empty so presence survives the round trip
		b = appendBytes(b, itemCategory, []byte(*it.Category))
	}
	return b
}

// DecodeItem decodes a card written by EncodeItem.
func DecodeItem(b []byte) (model.Item, error) {
	var it model.Item
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case itemID:
			return consumeString(typ, b, &it.ID)
		case itemText:
			return consumeString(typ, b, &it.Text)
		case itemAuthor:
			return consumeString(typ, b, &it.Author)
		case itemCategory:
			var s string
			n, ok := consumeString(typ, b, &s)
			if ok && n >= 0 {
				it.Category = &s
			}
			return n, ok
		}
		return 0, false
	})
	return it, err
}

const itemsEntry protowire.Number = 1

// EncodeItems encodes an ordered list of cards.
func EncodeItems(items []model.Item) []byte {
	var b []byte
	for _, it := range items {
		b = appendBytes(b, itemsEntry, EncodeItem(it))
	}
	return b
}

// DecodeItems decodes a list written by EncodeItems. A malformed entry fails
// the whole list.
func DecodeItems(b []byte) ([]model.Item, error) {
	items := []model.Item{}
	var entryErr error
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num != itemsEntry {
			return 0, false
		}
		var raw []byte
		n, ok := consumeBytes(typ, b, &raw)
		if ok && n >= 0 {
			it, err := DecodeItem(raw)
			if err != nil && entryErr == nil {
				entryErr = err
			}
			items = append(items, it)
		}
		return n, ok
	})
	if err == nil {
		err = entryErr
	}
	return items, err
}

// Quota is the persisted daily view counter.
type Quota struct {
	Count  int
	DayKey time.Time
}

const (
	quotaCount protowire.Number = 1
	quotaDay   protowire.Number = 2
)

// EncodeQuota encodes q. DayKey is stored as Unix seconds.
func EncodeQuota(q Quota) []byte {
	var b []byte
	b = appendInt(b, quotaCount, int64(q.Count))
	if !q.DayKey.IsZero() {
		b = appendInt(b, quotaDay, q.DayKey.Unix())
	}
	return b
}

// DecodeQuota decodes a quota; DayKey is returned in loc.
func DecodeQuota(b []byte, loc *time.Location) (Quota, error) {
	var count, day int64
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case quotaCount:
			return consumeInt(typ, b, &count)
		case quotaDay:
			return consumeInt(typ, b, &day)
		}
		return 0, false
	})
	q := Quota{Count: int(count)}
	if day != 0 {
		q.DayKey = time.Unix(day, 0).In(loc)
	}
	return q, err
}

// Anchor is the day's first card as mirrored to the secondary surface.
type Anchor struct {
	Item      model.Item
	DayOfYear int
	Year      int
}

const (
	anchorItem protowire.Number = 1
	anchorDay  protowire.Number = 2
	anchorYear protowire.Number = 3
)

// EncodeAnchor encodes a.
func EncodeAnchor(a Anchor) []byte {
	var b []byte
	b = appendBytes(b, anchorItem, EncodeItem(a.Item))
	b = appendInt(b, anchorDay, int64(a.DayOfYear))
	b = appendInt(b, anchorYear, int64(a.Year))
	return b
}

// DecodeAnchor decodes an anchor payload.
func DecodeAnchor(b []byte) (Anchor, error) {
	var a Anchor
	var raw []byte
	var day, year int64
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case anchorItem:
			return consumeBytes(typ, b, &raw)
		case anchorDay:
			return consumeInt(typ, b, &day)
		case anchorYear:
			return consumeInt(typ, b, &year)
		}
		return 0, false
	})
	if err != nil {
		return a, err
	}
	a.Item, err = DecodeItem(raw)
	a.DayOfYear = int(day)
	a.Year = int(year)
	return a, err
}

// Position is the pager's persisted state. DaySeed and Year tie it to the
// day it was recorded on.
type Position struct {
	Index    int
	Furthest int
	DaySeed  int
	Year     int
}

const (
	positionIndex    protowire.Number = 1
	positionFurthest protowire.Number = 2
	positionDay      protowire.Number = 3
	positionYear     protowire.Number = 4
)

// EncodePosition encodes p.
func EncodePosition(p Position) []byte {
	var b []byte
	b = appendInt(b, positionIndex, int64(p.Index))
	b = appendInt(b, positionFurthest, int64(p.Furthest))
	b = appendInt(b, positionDay, int64(p.DaySeed))
	b = appendInt(b, positionYear, int64(p.Year))
	return b
}

// DecodePosition decodes a pager position.
func DecodePosition(b []byte) (Position, error) {
	var idx, furthest, day, year int64
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case positionIndex:
			return consumeInt(typ, b, &idx)
		case positionFurthest:
			return consumeInt(typ, b, &furthest)
		case positionDay:
			return consumeInt(typ, b, &day)
		case positionYear:
			return consumeInt(typ, b, &year)
		}
		return 0, false
	})
	return Position{Index: int(idx), Furthest: int(furthest), DaySeed: int(day), Year: int(year)}, err
}

const (
	appearanceFont protowire.Number = 1
	appearanceSize protowire.Number = 2
)

// EncodeAppearance encodes the card style.
func EncodeAppearance(a model.Appearance) []byte {
	var b []byte
	b = appendString(b, appearanceFont, string(a.Font))
	b = appendString(b, appearanceSize, string(a.Size))
	return b
}

// DecodeAppearance decodes a card style. Unknown values normalise to the
// default style.
func DecodeAppearance(b []byte) (model.Appearance, error) {
	var font, size string
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case appearanceFont:
			return consumeString(typ, b, &font)
		case appearanceSize:
			return consumeString(typ, b, &size)
		}
		return 0, false
	})
	a := model.Appearance{Font: model.FontFamily(font), Size: model.TextSize(size)}
	return a.Normalize(), err
}

// PoolSnapshot is the cached pool together with the day it was fetched on.
type PoolSnapshot struct {
	Items     []model.Item
	DayOfYear int
	Year      int
}

const (
	snapshotItems protowire.Number = 1
	snapshotDay   protowire.Number = 2
	snapshotYear  protowire.Number = 3
)

// EncodePoolSnapshot encodes s.
func EncodePoolSnapshot(s PoolSnapshot) []byte {
	var b []byte
	b = appendBytes(b, snapshotItems, EncodeItems(s.Items))
	b = appendInt(b, snapshotDay, int64(s.DayOfYear))
	b = appendInt(b, snapshotYear, int64(s.Year))
	return b
}

// DecodePoolSnapshot decodes a cached pool.
func DecodePoolSnapshot(b []byte) (PoolSnapshot, error) {
	var s PoolSnapshot
	var raw []byte
	var day, year int64
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch num {
		case snapshotItems:
			return consumeBytes(typ, b, &raw)
		case snapshotDay:
			return consumeInt(typ, b, &day)
		case snapshotYear:
			return consumeInt(typ, b, &year)
		}
		return 0, false
	})
	if err != nil {
		return s, err
	}
	s.Items, err = DecodeItems(raw)
	s.DayOfYear = int(day)
	s.Year = int(year)
	return s, err
}

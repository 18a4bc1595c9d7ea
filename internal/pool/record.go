package pool

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abelbrown/dailycard/internal/model"
)

// Namespace seeds the name-based IDs of loaded items, so the same quote gets
// the same ID on every load and favorites keep matching it.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/abelbrown/dailycard/pool"))

// Record is one entry of a quotes JSON asset.
type Record struct {
	Quote    string   `json:"Quote"`
	Author   string   `json:"Author"`
	Tags     []string `json:"Tags,omitempty"`
	Category *string  `json:"Category,omitempty"`
}

// ItemID derives a stable ID from the quote text and author.
func ItemID(text, author string) string {
	return uuid.NewSHA1(Namespace, []byte(text+"\x00"+author)).String()
}

// Item converts r, returning false when the quote or author is blank.
func (r Record) Item() (model.Item, bool) {
	text := strings.TrimSpace(r.Quote)
	author := strings.TrimSpace(r.Author)
	if text == "" || author == "" {
		return model.Item{}, false
	}
	item := model.Item{ID: ItemID(text, author), Text: text, Author: author}
	if category, ok := r.category(); ok {
		item.Category = model.StringPtr(category)
	}
	return item, true
}

// category prefers the explicit field, then the first tag that is a single
// plain word.
func (r Record) category() (string, bool) {
	if r.Category != nil {
		if c := strings.TrimSpace(*r.Category); c != "" {
			return formatCategory(c), true
		}
	}
	for _, tag := range r.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || strings.ContainsAny(tag, "-_") {
			continue
		}
		return formatCategory(tag), true
	}
	return "", false
}

func formatCategory(s string) string {
	return cases.Title(language.Und).String(s)
}

// Parse decodes a JSON array of records and converts the usable ones.
func Parse(r io.Reader) ([]model.Item, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	items := make([]model.Item, 0, len(records))
	for _, rec := range records {
		if item, ok := rec.Item(); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

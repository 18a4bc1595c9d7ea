package pool

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/abelbrown/dailycard/internal/model"
	"github.com/abelbrown/dailycard/internal/store"
)

const assetJSON = `[
  {"Quote": "  Stay hungry, stay foolish.  ", "Author": " Steve Jobs ", "Tags": ["life-lessons", "wisdom", "work"]},
  {"Quote": "Know thyself.", "Author": "Socrates", "Category": "  philosophy "},
  {"Quote": "   ", "Author": "Nobody"},
  {"Quote": "Orphan quote", "Author": ""},
  {"Quote": "Tagless.", "Author": "Anon", "Tags": ["snake_case", "   "]},
  {"Quote": "Blank category.", "Author": "Anon", "Category": " ", "Tags": ["hope"]}
]`

func TestParseRecords(t *testing.T) {
	items, err := Parse(strings.NewReader(assetJSON))
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "Stay hungry, stay foolish.", items[0].Text)
	assert.Equal(t, "Steve Jobs", items[0].Author)
	assert.Equal(t, "Wisdom", items[0].CategoryOr(""))

	assert.Equal(t, "Philosophy", items[1].CategoryOr(""))

	assert.Nil(t, items[2].Category)

	assert.Equal(t, "Hope", items[3].CategoryOr(""))
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"Quote": "not an array"}`))
	assert.Error(t, err)
}

func TestItemIDsAreStable(t *testing.T) {
	a, err := Parse(strings.NewReader(assetJSON))
	require.NoError(t, err)
	b, err := Parse(strings.NewReader(assetJSON))
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
	assert.NotEqual(t, a[0].ID, a[1].ID)
	assert.Equal(t, ItemID("Know thyself.", "Socrates"), a[1].ID)
}

func TestFormatCategory(t *testing.T) {
	assert.Equal(t, "Self-Determination", formatCategory("self-determination"))
	assert.Equal(t, "Inner Peace", formatCategory("INNER peace"))
}

func TestFallback(t *testing.T) {
	items := Fallback()
	require.Len(t, items, 20)
	assert.Equal(t, model.Initial.Text, items[0].Text)
	assert.Equal(t, "local-20", items[19].ID)

	items[0].Text = "mutated"
	assert.NotEqual(t, "mutated", Fallback()[0].Text)
}

func TestLimit(t *testing.T) {
	items := Fallback()
	assert.Len(t, Limit(items, 5), 5)
	assert.Len(t, Limit(items, 0), 20)
	assert.Len(t, Limit(items, 99), 20)
}

type stubSource struct {
	name  string
	items []model.Item
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context) ([]model.Item, error) {
	s.calls++
	return s.items, s.err
}

func TestLoadFirstNonEmptyWins(t *testing.T) {
	failing := &stubSource{name: "failing", err: errors.New("boom")}
	empty := &stubSource{name: "empty"}
	good := &stubSource{name: "good", items: []model.Item{{ID: "g", Text: "t", Author: "a"}}}
	unused := &stubSource{name: "unused", items: Fallback()}

	items, name := Load(context.Background(), failing, empty, good, unused)
	assert.Equal(t, "good", name)
	assert.Len(t, items, 1)
	assert.Zero(t, unused.calls)
}

func TestLoadFallsBack(t *testing.T) {
	items, name := Load(context.Background(), &stubSource{name: "empty"})
	assert.Equal(t, FallbackName, name)
	assert.Len(t, items, 20)

	items, name = Load(context.Background())
	assert.Equal(t, FallbackName, name)
	assert.Len(t, items, 20)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.json")
	require.NoError(t, os.WriteFile(path, []byte(assetJSON), 0644))

	src := NewFileSource(path)
	assert.Equal(t, "file:"+path, src.Name())
	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 4)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(assetJSON))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, NewFetcher(5*time.Second, 0))
	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Contains(t, agent, "dailycard")
}

func TestHTTPSource404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPSource(server.URL, NewFetcher(5*time.Second, 0)).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetcherHonoursContext(t *testing.T) {
	f := NewFetcher(5*time.Second, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPSource("http://127.0.0.1:1/", f).Fetch(ctx)
	assert.Error(t, err)
}

func TestRSSSource(t *testing.T) {
	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Quote Feed</title>
    <item>
      <title>Monday</title>
      <description>Well done is better than well said.</description>
      <category>wisdom</category>
    </item>
    <item>
      <title>Title only</title>
    </item>
  </channel>
</rss>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rss))
	}))
	defer server.Close()

	items, err := NewRSSSource(server.URL, NewFetcher(5*time.Second, 0)).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Well done is better than well said.", items[0].Text)
	assert.Equal(t, "Quote Feed", items[0].Author)
	assert.Equal(t, "Wisdom", items[0].CategoryOr(""))
	assert.Equal(t, "Title only", items[1].Text)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "héllo w...", truncate("héllo wörld!", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

type fakeModels struct {
	text   string
	err    error
	model  string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(f.text, genai.RoleModel),
		}},
	}, nil
}

func TestGeminiSource(t *testing.T) {
	fake := &fakeModels{text: `[
		{"text": "Begin anywhere.", "author": "John Cage", "category": "beginnings"},
		{"text": "Patience is bitter, but its fruit is sweet.", "author": "Rousseau"},
		{"text": "", "author": "Blank"}
	]`}
	src := newGeminiSource(fake, GeminiOptions{Model: "gemini-test", Count: 3})

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "gemini-test", fake.model)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.Equal(t, genai.TypeArray, fake.config.ResponseSchema.Type)

	assert.Equal(t, "Beginnings", items[0].CategoryOr(""))
	assert.Equal(t, "Inspiration", items[1].CategoryOr(""))
	assert.Equal(t, ItemID("Begin anywhere.", "John Cage"), items[0].ID)
	assert.Equal(t, "gemini/gemini-test", src.Name())
}

func TestGeminiSourceErrors(t *testing.T) {
	_, err := newGeminiSource(&fakeModels{err: errors.New("quota")}, GeminiOptions{}).Fetch(context.Background())
	assert.Error(t, err)

	_, err = newGeminiSource(&fakeModels{text: "not json"}, GeminiOptions{}).Fetch(context.Background())
	assert.Error(t, err)

	_, err = NewGeminiSource(context.Background(), GeminiOptions{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGeminiPrompt(t *testing.T) {
	src := newGeminiSource(&fakeModels{}, GeminiOptions{Count: 7, Topic: "patience"})
	p := src.prompt()
	assert.Contains(t, p, "Generate 7 unique")
	assert.Contains(t, p, "patience")
}

func TestCacheRoundTrip(t *testing.T) {
	kv := store.NewMemory()
	c := NewCache(kv)

	items, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	want := Fallback()[:5]
	c.Save(want, time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local))

	got, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Text, got[i].Text)
	}
}

func TestCacheMalformed(t *testing.T) {
	kv := store.NewMemory()
	require.NoError(t, kv.Set(CacheKey, []byte{0xff, 0xff, 0xff}))

	_, err := NewCache(kv).Fetch(context.Background())
	assert.Error(t, err)

	items, name := Load(context.Background(), NewCache(kv))
	assert.Equal(t, FallbackName, name)
	assert.Len(t, items, 20)
}

func TestPinnedCacheOnlyServesItsDay(t *testing.T) {
	kv := store.NewMemory()
	day := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)
	c := NewCache(kv)
	c.Save(Fallback()[:4], day)

	got, err := c.Pinned(day.Add(10 * time.Hour)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 4, "same calendar day should hit")

	got, err = c.Pinned(day.AddDate(0, 0, 1)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got, "next day should miss")

	got, err = c.Pinned(day.AddDate(1, 0, 0)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got, "same day next year should miss")

	got, err = c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 4, "unpinned cache serves any day")
}

package pool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/abelbrown/dailycard/internal/model"
)

// ErrMissingAPIKey is returned by NewGeminiSource without a key.
var ErrMissingAPIKey = errors.New("gemini API key is not configured")

// defaultCategory labels generated quotes that come back without one.
const defaultCategory = "Inspiration"

// contentGenerator is the slice of the genai client the source needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiSource asks a Gemini model for a fresh batch of quotes using
// structured JSON output.
type GeminiSource struct {
	models  contentGenerator
	model   string
	count   int
	topic   string
	limiter *rate.Limiter
}

// GeminiOptions configure NewGeminiSource.
type GeminiOptions struct {
	APIKey string
	Model  string
	Count  int
	Topic  string
}

// NewGeminiSource creates a client for opts.APIKey.
func NewGeminiSource(ctx context.Context, opts GeminiOptions) (*GeminiSource, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiSource(client.Models, opts), nil
}

func newGeminiSource(models contentGenerator, opts GeminiOptions) *GeminiSource {
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
	}
	if opts.Count <= 0 {
		opts.Count = 5
	}
	return &GeminiSource{
		models:  models,
		model:   opts.Model,
		count:   opts.Count,
		topic:   opts.Topic,
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 1),
	}
}

// Name returns the source identifier for logging.
func (s *GeminiSource) Name() string {
	return "gemini/" + s.model
}

func quoteSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"text":     {Type: genai.TypeString},
				"author":   {Type: genai.TypeString},
				"category": {Type: genai.TypeString},
			},
			Required: []string{"text", "author"},
		},
	}
}

func (s *GeminiSource) prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d unique, inspiring, and thought-provoking quotes.\n", s.count)
	b.WriteString("The first quote should be particularly relevant for today: new beginnings, resilience, or mindfulness.\n")
	if s.topic != "" {
		fmt.Fprintf(&b, "Favour these themes: %s.\n", s.topic)
	}
	b.WriteString("Ensure authors are diverse (historical figures, modern thinkers, philosophers).\n")
	b.WriteString("Return a JSON array where each quote has text, author and category fields.")
	return b.String()
}

type generatedQuote struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// Fetch generates a batch. Blank entries are dropped.
func (s *GeminiSource) Fetch(ctx context.Context) ([]model.Item, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	content := genai.NewContentFromText(s.prompt(), genai.RoleUser)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   quoteSchema(),
	}
	resp, err := s.models.GenerateContent(ctx, s.model, []*genai.Content{content}, config)
	if err != nil {
		return nil, fmt.Errorf("generate quotes: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("generate quotes: empty response")
	}
	var raw []generatedQuote
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse generated quotes: %w", err)
	}

	items := make([]model.Item, 0, len(raw))
	for _, q := range raw {
		category := q.Category
		if strings.TrimSpace(category) == "" {
			category = defaultCategory
		}
		if item, ok := (Record{Quote: q.Text, Author: q.Author, Category: &category}).Item(); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// Package widget serves today's card to secondary displays over HTTP.
//
// It reads only the shared anchor payload, never the pool or the pager, the
// same way a home-screen widget would.
package widget

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abelbrown/dailycard/internal/anchor"
	"github.com/abelbrown/dailycard/internal/codec"
	"github.com/abelbrown/dailycard/internal/logging"
	"github.com/abelbrown/dailycard/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Card is the JSON shape of today's card.
type Card struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Category  string `json:"category,omitempty"`
	DayOfYear int    `json:"dayOfYear"`
	Year      int    `json:"year"`
}

func cardFrom(p codec.Anchor) Card {
	return Card{
		ID:        p.Item.ID,
		Text:      p.Item.Text,
		Author:    p.Item.Author,
		Category:  p.Item.CategoryOr(""),
		DayOfYear: p.DayOfYear,
		Year:      p.Year,
	}
}

// Server is the widget HTTP server.
type Server struct {
	kv     store.KV
	now    func() time.Time
	hub    *hub
	engine *gin.Engine
}

// New builds the server. Notices from a are pushed to /events streams.
func New(kv store.KV, a *anchor.Anchor, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{kv: kv, now: now, hub: newHub()}
	if a != nil {
		a.Subscribe(s.hub.publish)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.GET("/today", s.today)
	r.GET("/events", s.events)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// current returns the stored payload when it is today's.
func (s *Server) current() (codec.Anchor, bool) {
	p, ok := anchor.Load(s.kv)
	if !ok || !anchor.ValidFor(p, s.now()) {
		return codec.Anchor{}, false
	}
	return p, true
}

func (s *Server) today(c *gin.Context) {
	p, ok := s.current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no card for today"})
		return
	}
	c.JSON(http.StatusOK, cardFrom(p))
}

// events streams "card" events: the current card on connect, then every
// time the anchor changes.
func (s *Server) events(c *gin.Context) {
	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	if p, ok := s.current(); ok {
		c.SSEvent("card", cardFrom(p))
	} else {
		c.SSEvent("empty", gin.H{"error": "no card for today"})
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case n := <-ch:
			if !n.Changed {
				c.SSEvent("ping", gin.H{"id": n.Payload.Item.ID})
				return true
			}
			c.SSEvent("card", cardFrom(n.Payload))
			return true
		}
	})
}

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		// streams end when ctx does
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("widget: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs each request through the file logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug("widget: request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

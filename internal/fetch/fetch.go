// Package fetch pulls articles from the external news providers and
// lands them in the article store, one transaction per provider.
package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/newsdeskhq/newsdesk/internal/logger"
	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

// Adapter is one provider: it knows that provider's request shape and
// response schema and returns records already normalized into the
// canonical article shape. A failing adapter returns an error and zero
// records; it never takes its siblings down with it.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]newsdesk.Article, error)
}

var fetchClient = &http.Client{
	Timeout: 10 * time.Second,
}

// Result is the outcome of one adapter within a run.
type Result struct {
	Source   string `json:"source"`
	Articles int    `json:"articles"`
	Error    string `json:"error,omitempty"`
}

// Coordinator walks the registered adapters in order and upserts each
// batch inside its own unit of work.
type Coordinator struct {
	store    newsdesk.IngestStore
	adapters []Adapter
	timeout  time.Duration
}

func NewCoordinator(store newsdesk.IngestStore, timeout time.Duration, adapters ...Adapter) *Coordinator {
	return &Coordinator{
		store:    store,
		adapters: adapters,
		timeout:  timeout,
	}
}

// Run fetches from every adapter sequentially, in registration order.
// Fetch or persistence failures abort only that adapter's batch; the run
// itself always completes and reports per-source results.
func (c *Coordinator) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(c.adapters))
	for _, adapter := range c.adapters {
		results = append(results, c.runOne(ctx, adapter))
	}

	return results
}

func (c *Coordinator) runOne(ctx context.Context, adapter Adapter) Result {
	ctx = logger.Ctx(ctx, slog.String("source", adapter.Name()))
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	slog.InfoContext(ctx, "fetching articles")

	articles, err := adapter.Fetch(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error fetching from provider", "error", err)
		return Result{Source: adapter.Name(), Error: err.Error()}
	}

	err = c.store.WithArticleTx(ctx, func(w newsdesk.ArticleWriter) error {
		for _, a := range articles {
			if err := w.UpsertArticle(ctx, a); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "error persisting batch", "error", err)
		return Result{Source: adapter.Name(), Error: err.Error()}
	}

	slog.InfoContext(ctx, "articles fetched", "count", len(articles))

	return Result{Source: adapter.Name(), Articles: len(articles)}
}

var stripPolicy = bluemonday.StrictPolicy()

// Removes all html tags from the string, usually a title or description.
//
// Also limits the length of the string so there's not a massive chunk of text being stored.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = stripPolicy.Sanitize(s)
	if len(s) > 2048 {
		s = s[:2048]
	}

	return s
}

// sanitizeOpt is sanitize for optional fields, collapsing empty to nil.
func sanitizeOpt(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitize(*s)
	if clean == "" {
		return nil
	}

	return &clean
}

// orGeneral applies the default category for providers that give no
// section for a record.
func orGeneral(category string) string {
	if category == "" {
		return "General"
	}

	return category
}

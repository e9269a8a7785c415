package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

// memStore is an in-memory IngestStore that only applies a batch's
// writes when the unit of work commits.
type memStore struct {
	byURL map[string]newsdesk.Article
}

func newMemStore() *memStore {
	return &memStore{byURL: map[string]newsdesk.Article{}}
}

func (s *memStore) WithArticleTx(ctx context.Context, fn func(w newsdesk.ArticleWriter) error) error {
	staged := &memWriter{}
	if err := fn(staged); err != nil {
		return err
	}

	for _, a := range staged.articles {
		s.byURL[a.URL] = a
	}

	return nil
}

type memWriter struct {
	articles []newsdesk.Article
	failOn   string
}

func (w *memWriter) UpsertArticle(ctx context.Context, a newsdesk.Article) error {
	if w.failOn != "" && a.URL == w.failOn {
		return errors.New("constraint violated")
	}
	w.articles = append(w.articles, a)

	return nil
}

type stubAdapter struct {
	name     string
	articles []newsdesk.Article
	err      error
}

func (a stubAdapter) Name() string { return a.name }

func (a stubAdapter) Fetch(ctx context.Context) ([]newsdesk.Article, error) {
	return a.articles, a.err
}

func article(url, title string) newsdesk.Article {
	return newsdesk.Article{Title: title, Source: "NewsAPI", Category: "General", URL: url}
}

func TestCoordinatorRun(t *testing.T) {
	store := newMemStore()
	c := NewCoordinator(store, time.Second,
		stubAdapter{name: "NewsAPI", articles: []newsdesk.Article{article("https://x/1", "one"), article("https://x/2", "two")}},
		stubAdapter{name: "The Guardian", articles: []newsdesk.Article{article("https://x/3", "three")}},
	)

	results := c.Run(context.Background())

	require.Len(t, results, 2)
	assert.Equal(t, Result{Source: "NewsAPI", Articles: 2}, results[0])
	assert.Equal(t, Result{Source: "The Guardian", Articles: 1}, results[1])
	assert.Len(t, store.byURL, 3)
}

func TestCoordinatorIsolatesFailingAdapter(t *testing.T) {
	store := newMemStore()
	c := NewCoordinator(store, time.Second,
		stubAdapter{name: "NewsAPI", err: errors.New("unexpected status code: 500")},
		stubAdapter{name: "The Guardian", articles: []newsdesk.Article{article("https://x/3", "three")}},
	)

	results := c.Run(context.Background())

	// The broken provider reports its failure and the run continues
	require.Len(t, results, 2)
	assert.Equal(t, "NewsAPI", results[0].Source)
	assert.Contains(t, results[0].Error, "unexpected status code")
	assert.Equal(t, Result{Source: "The Guardian", Articles: 1}, results[1])

	// Only the healthy adapter's batch landed
	assert.Len(t, store.byURL, 1)
	assert.Contains(t, store.byURL, "https://x/3")
}

func TestCoordinatorRollsBackFailedBatch(t *testing.T) {
	store := &failingStore{inner: newMemStore(), failOn: "https://x/2"}
	c := NewCoordinator(store, time.Second,
		stubAdapter{name: "NewsAPI", articles: []newsdesk.Article{article("https://x/1", "one"), article("https://x/2", "two")}},
		stubAdapter{name: "The Guardian", articles: []newsdesk.Article{article("https://x/3", "three")}},
	)

	results := c.Run(context.Background())

	// The first adapter's batch rolled back wholesale, including the
	// record that upserted cleanly before the failure
	assert.NotEmpty(t, results[0].Error)
	assert.Empty(t, results[0].Articles)
	assert.Len(t, store.inner.byURL, 1)
	assert.Contains(t, store.inner.byURL, "https://x/3")
}

// failingStore injects an upsert failure partway through a batch.
type failingStore struct {
	inner  *memStore
	failOn string
}

func (s *failingStore) WithArticleTx(ctx context.Context, fn func(w newsdesk.ArticleWriter) error) error {
	staged := &memWriter{failOn: s.failOn}
	if err := fn(staged); err != nil {
		return err
	}

	for _, a := range staged.articles {
		s.inner.byURL[a.URL] = a
	}

	return nil
}

func TestCoordinatorDeterministicOrder(t *testing.T) {
	store := newMemStore()
	c := NewCoordinator(store, time.Second,
		stubAdapter{name: "NewsAPI"},
		stubAdapter{name: "The Guardian"},
		stubAdapter{name: "BBC News"},
		stubAdapter{name: "New York Times"},
	)

	for i := 0; i < 3; i++ {
		results := c.Run(context.Background())
		sources := make([]string, 0, len(results))
		for _, res := range results {
			sources = append(sources, res.Source)
		}
		assert.Equal(t, []string{"NewsAPI", "The Guardian", "BBC News", "New York Times"}, sources)
	}
}

func TestCoordinatorAppliesDeadline(t *testing.T) {
	store := newMemStore()
	c := NewCoordinator(store, 10*time.Millisecond,
		deadlineAdapter{},
		stubAdapter{name: "The Guardian", articles: []newsdesk.Article{article("https://x/3", "three")}},
	)

	results := c.Run(context.Background())

	assert.Contains(t, results[0].Error, context.DeadlineExceeded.Error())
	assert.Equal(t, Result{Source: "The Guardian", Articles: 1}, results[1])
}

// deadlineAdapter hangs until its context expires, like a stalled provider.
type deadlineAdapter struct{}

func (deadlineAdapter) Name() string { return "NewsAPI" }

func (deadlineAdapter) Fetch(ctx context.Context) ([]newsdesk.Article, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

package newsdesk

import (
	"context"
	"time"
)

type (
	// Article is one normalized news story, regardless of which provider
	// it came from.
	Article struct {
		ID          string    `db:"id"`
		Title       string    `db:"title"`
		Description *string   `db:"description"`
		Author      *string   `db:"author"`
		Source      string    `db:"source"`
		Category    string    `db:"category"`
		URL         string    `db:"url"`
		PublishedAt *string   `db:"published_at"` // stored verbatim as the provider sent it
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
	}

	// ArticleFilter holds the optional ad-hoc predicates for listing
	// articles. Zero values impose no constraint.
	ArticleFilter struct {
		Keyword  string // case-insensitive substring match on title
		Date     string // YYYY-MM-DD, matched against the day portion of published_at
		Category string
		Source   string
	}

	// ArticlePage is one page of results plus the total matching count.
	ArticlePage struct {
		Articles []Article
		Total    int
	}

	ArticleRepo interface {
		Article(ctx context.Context, id string) (Article, error)
		ListArticles(ctx context.Context, filter ArticleFilter, limit, offset int) (ArticlePage, error)
		// ListPreferred applies set-membership filters from a saved
		// preference: each non-empty dimension restricts results to
		// members of that set, empty dimensions are unconstrained.
		ListPreferred(ctx context.Context, pref UserPreference, limit, offset int) (ArticlePage, error)
	}

	// ArticleWriter is the surface available inside one ingestion unit of
	// work. Upserts are keyed by url: a re-fetched url overwrites the
	// existing row's fields instead of inserting a duplicate.
	ArticleWriter interface {
		UpsertArticle(ctx context.Context, a Article) error
	}

	// IngestStore opens an atomic unit of work for one provider's batch.
	// If fn returns an error, none of its writes apply.
	IngestStore interface {
		WithArticleTx(ctx context.Context, fn func(w ArticleWriter) error) error
	}
)

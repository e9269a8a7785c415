package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

const articleNamespace = "-art"

func (r Repo) Article(ctx context.Context, id string) (newsdesk.Article, error) {
	const q = `SELECT * FROM articles WHERE id = ?;`

	var article newsdesk.Article
	err := r.db.GetContext(ctx, &article, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return newsdesk.Article{}, newsdesk.ErrNotFound
	}
	if err != nil {
		return newsdesk.Article{}, fmt.Errorf("error fetching article: %s", err)
	}

	return article, nil
}

// ListArticles returns one page of articles matching the conjunction of
// the supplied predicates, plus the total count of matching rows.
func (r Repo) ListArticles(ctx context.Context, filter newsdesk.ArticleFilter, limit, offset int) (newsdesk.ArticlePage, error) {
	conds := filterConds(filter)
	return r.articlePage(ctx, conds, limit, offset)
}

// ListPreferred applies a saved preference as set-membership filters.
// Dimensions with an empty set impose no constraint.
func (r Repo) ListPreferred(ctx context.Context, pref newsdesk.UserPreference, limit, offset int) (newsdesk.ArticlePage, error) {
	conds := sq.And{}
	if len(pref.Sources) > 0 {
		conds = append(conds, sq.Eq{"source": []string(pref.Sources)})
	}
	if len(pref.Categories) > 0 {
		conds = append(conds, sq.Eq{"category": []string(pref.Categories)})
	}
	if len(pref.Authors) > 0 {
		conds = append(conds, sq.Eq{"author": []string(pref.Authors)})
	}

	return r.articlePage(ctx, conds, limit, offset)
}

func filterConds(filter newsdesk.ArticleFilter) sq.And {
	conds := sq.And{}
	if filter.Keyword != "" {
		conds = append(conds, sq.Expr("LOWER(title) LIKE ?", "%"+strings.ToLower(filter.Keyword)+"%"))
	}
	if filter.Date != "" {
		// published_at is stored verbatim as the provider sent it, so the
		// calendar-day match compares the leading YYYY-MM-DD portion.
		conds = append(conds, sq.Expr("substr(published_at, 1, 10) = ?", filter.Date))
	}
	if filter.Category != "" {
		conds = append(conds, sq.Eq{"category": filter.Category})
	}
	if filter.Source != "" {
		conds = append(conds, sq.Eq{"source": filter.Source})
	}

	return conds
}

func (r Repo) articlePage(ctx context.Context, conds sq.And, limit, offset int) (newsdesk.ArticlePage, error) {
	countQ := sq.Select("COUNT(*)").From("articles")
	listQ := sq.Select("*").From("articles").
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if len(conds) > 0 {
		countQ = countQ.Where(conds)
		listQ = listQ.Where(conds)
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return newsdesk.ArticlePage{}, fmt.Errorf("error constructing sql: %s", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return newsdesk.ArticlePage{}, fmt.Errorf("error counting articles: %s", err)
	}

	query, args, err = listQ.ToSql()
	if err != nil {
		return newsdesk.ArticlePage{}, fmt.Errorf("error constructing sql: %s", err)
	}
	articles := []newsdesk.Article{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return newsdesk.ArticlePage{}, fmt.Errorf("error selecting articles: %s", err)
	}

	return newsdesk.ArticlePage{Articles: articles, Total: total}, nil
}

// UpsertArticle inserts the article, or overwrites the mutable fields of
// the existing row carrying the same url. The url is the natural key for
// deduplication across fetch runs.
func (t articleTx) UpsertArticle(ctx context.Context, a newsdesk.Article) error {
	const q = `INSERT INTO articles (id, title, description, author, source, category, url, published_at)
	VALUES (:id, :title, :description, :author, :source, :category, :url, :published_at)
	ON CONFLICT (url) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		author = excluded.author,
		source = excluded.source,
		category = excluded.category,
		published_at = excluded.published_at,
		updated_at = CURRENT_TIMESTAMP;`

	a.ID = uuid.NewString() + articleNamespace
	if _, err := t.tx.NamedExecContext(ctx, q, a); err != nil {
		return fmt.Errorf("error upserting article: %s", err)
	}

	return nil
}

package api

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/newsdeskhq/newsdesk/internal/fetch"
	"github.com/newsdeskhq/newsdesk/internal/migrations"
	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
	"github.com/newsdeskhq/newsdesk/internal/sqlite"
)

// newTestServer builds a server over a throwaway database, with no
// registered source adapters.
func newTestServer(t *testing.T) (*Server, sqlite.Repo) {
	t.Helper()

	dbx, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	require.NoError(t, migrations.Run(dbx))

	repo := sqlite.New(dbx)
	coordinator := fetch.NewCoordinator(repo, time.Second)
	s := NewServer(ServerConfig{Port: 0, CorsOrigin: "*"}, repo, repo, coordinator)

	return s, repo
}

func seedArticles(t *testing.T, repo sqlite.Repo, n int) {
	t.Helper()

	err := repo.WithArticleTx(context.Background(), func(w newsdesk.ArticleWriter) error {
		for i := 0; i < n; i++ {
			a := newsdesk.Article{
				Title:    fmt.Sprintf("Story %d", i),
				Source:   "NewsAPI",
				Category: "General",
				URL:      fmt.Sprintf("https://x/%d", i),
			}
			if err := w.UpsertArticle(context.Background(), a); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

// withUser stamps a resolved user onto the request context the way the
// auth middleware would.
func withUser(ctx context.Context, usr newsdesk.User) context.Context {
	return context.WithValue(ctx, userKey, usr)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nderrs "github.com/newsdeskhq/newsdesk/internal/errors"
	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

func TestGetArticlesPagination(t *testing.T) {
	s, repo := newTestServer(t)
	seedArticles(t, repo, 12)

	var (
		req = httptest.NewRequest(http.MethodGet, "/api/articles?page=2", nil)
		rec = httptest.NewRecorder()
	)
	require.NoError(t, s.getArticles(rec, req))

	var resp ArticleListResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 12, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.CurrentPage)
	assert.Equal(t, 2, resp.Meta.LastPage)
	assert.Equal(t, 10, resp.Meta.PerPage)
	require.NotNil(t, resp.Meta.From)
	require.NotNil(t, resp.Meta.To)
	assert.Equal(t, 11, *resp.Meta.From)
	assert.Equal(t, 12, *resp.Meta.To)

	assert.Equal(t, "/api/articles?page=1", resp.Links.First)
	assert.Equal(t, "/api/articles?page=2", resp.Links.Last)
	require.NotNil(t, resp.Links.Prev)
	assert.Equal(t, "/api/articles?page=1", *resp.Links.Prev)
	assert.Nil(t, resp.Links.Next)
}

func TestGetArticlesPastLastPage(t *testing.T) {
	s, repo := newTestServer(t)
	seedArticles(t, repo, 3)

	var (
		req = httptest.NewRequest(http.MethodGet, "/api/articles?page=9", nil)
		rec = httptest.NewRecorder()
	)
	require.NoError(t, s.getArticles(rec, req))

	var resp ArticleListResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	// Empty page, but the metadata still describes the full result set
	assert.Empty(t, resp.Data)
	assert.Equal(t, 3, resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.LastPage)
	assert.Nil(t, resp.Meta.From)
	assert.Nil(t, resp.Meta.To)
}

func TestGetArticlesKeywordFilter(t *testing.T) {
	s, repo := newTestServer(t)

	err := repo.WithArticleTx(context.Background(), func(w newsdesk.ArticleWriter) error {
		return w.UpsertArticle(context.Background(), newsdesk.Article{
			Title: "Euro Hits High", Source: "NewsAPI", Category: "General", URL: "https://x/euro",
		})
	})
	require.NoError(t, err)
	seedArticles(t, repo, 2)

	var (
		req = httptest.NewRequest(http.MethodGet, "/api/articles?keyword=EURO", nil)
		rec = httptest.NewRecorder()
	)
	require.NoError(t, s.getArticles(rec, req))

	var resp ArticleListResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Euro Hits High", resp.Data[0].Title)
}

func TestGetArticleByID(t *testing.T) {
	s, repo := newTestServer(t)
	seedArticles(t, repo, 1)

	page, err := repo.ListArticles(context.Background(), newsdesk.ArticleFilter{}, 1, 0)
	require.NoError(t, err)
	id := page.Articles[0].ID

	srv := httptest.NewServer(s.Handler)
	defer srv.Close()

	for i := 0; i < 2; i++ { // second hit comes from the response cache
		resp, err := http.Get(srv.URL + "/api/articles/" + id)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Data ArticleResp `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, id, body.Data.ID)
		assert.Equal(t, "Story 0", body.Data.Title)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	srv := httptest.NewServer(s.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/articles/missing-art")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body nderrs.Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Article not found", body.Err.Error())
}

func TestPostFetchEmptyRun(t *testing.T) {
	s, _ := newTestServer(t)

	var (
		req = httptest.NewRequest(http.MethodPost, "/api/fetch", nil)
		rec = httptest.NewRecorder()
	)
	require.NoError(t, s.postFetch(rec, req))

	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.Results)
}

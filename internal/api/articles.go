package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	nderrs "github.com/newsdeskhq/newsdesk/internal/errors"
	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
	"github.com/newsdeskhq/newsdesk/internal/serverutil"
)

// ArticleResp is the article projection exposed to clients. The store's
// created_at/updated_at stay internal on this view.
type ArticleResp struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Author      *string `json:"author"`
	Source      string  `json:"source"`
	Category    string  `json:"category"`
	URL         string  `json:"url"`
	PublishedAt *string `json:"published_at"`
}

func apiArticle(a newsdesk.Article) ArticleResp {
	return ArticleResp{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Author:      a.Author,
		Source:      a.Source,
		Category:    a.Category,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
	}
}

type ArticleListResp struct {
	Data  []ArticleResp `json:"data"`
	Links pageLinks     `json:"links"`
	Meta  pageMeta      `json:"meta"`
}

func articleListResp(r *http.Request, page int, result newsdesk.ArticlePage) ArticleListResp {
	data := make([]ArticleResp, 0, len(result.Articles))
	for _, a := range result.Articles {
		data = append(data, apiArticle(a))
	}
	links, meta := paginate(r, page, len(data), result.Total)

	return ArticleListResp{Data: data, Links: links, Meta: meta}
}

func (s *Server) getArticles(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		q    = r.URL.Query()
		page = parsePage(r)
	)

	filter := newsdesk.ArticleFilter{
		Keyword:  q.Get("keyword"),
		Date:     q.Get("date"),
		Category: q.Get("category"),
		Source:   q.Get("source"),
	}

	result, err := s.repo.ListArticles(ctx, filter, perPage, (page-1)*perPage)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, articleListResp(r, page, result))
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["articleID"]

	if cached, ok := s.articleCache.Get(id); ok {
		return serverutil.WriteJSON(w, http.StatusOK, struct {
			Data ArticleResp `json:"data"`
		}{Data: cached})
	}

	article, err := s.repo.Article(r.Context(), id)
	if errors.Is(err, newsdesk.ErrNotFound) {
		return nderrs.E("Article not found", http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	resp := apiArticle(article)
	s.articleCache.Add(id, resp)

	return serverutil.WriteJSON(w, http.StatusOK, struct {
		Data ArticleResp `json:"data"`
	}{Data: resp})
}

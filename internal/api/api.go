// Package api serves the read API: filterable article listings,
// per-user preferences, personalized news, and the operator-facing
// ingestion trigger.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/newsdeskhq/newsdesk/internal/fetch"
	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
	"github.com/newsdeskhq/newsdesk/internal/serverutil"
)

type (
	// Repository is everything the API needs from the persistence layer.
	Repository interface {
		newsdesk.ArticleRepo
		newsdesk.PreferenceRepo
	}

	// Server is an instance of the news API server.
	Server struct {
		*http.Server

		repo         Repository
		identity     newsdesk.IdentityService
		coordinator  *fetch.Coordinator
		articleCache *lru.Cache[string, ArticleResp]
	}

	ServerConfig struct {
		Port       int
		CorsOrigin string
	}
)

func NewServer(config ServerConfig, repo Repository, identity newsdesk.IdentityService, coordinator *fetch.Coordinator) *Server {
	var (
		r        = serverutil.ErrRouter{Router: mux.NewRouter()}
		cache, _ = lru.New[string, ArticleResp](1024)
	)

	srvr := Server{
		repo:         repo,
		identity:     identity,
		coordinator:  coordinator,
		articleCache: cache,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			Handler: handlers.CORS(
				handlers.AllowedOrigins([]string{config.CorsOrigin}),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type", "authorization"}),
			)(r),
		},
	}

	r.Use(serverutil.AccessLogMiddleware) // Log everything

	// Public article views
	r.HandleFuncE("/api/articles", srvr.getArticles).Methods(http.MethodGet)
	r.HandleFuncE("/api/articles/{articleID}", srvr.getArticle).Methods(http.MethodGet)

	// Operator trigger: "fetch all sources now"
	r.HandleFuncE("/api/fetch", srvr.postFetch).Methods(http.MethodPost)

	authed := serverutil.ErrRouter{Router: r.NewRoute().Subrouter()}
	authed.Use(srvr.requireTokenMiddleware())

	// Preference management and the personalized view
	authed.HandleFuncE("/api/preferences", srvr.getPreferences).Methods(http.MethodGet)
	authed.HandleFuncE("/api/preferences", srvr.postPreferences).Methods(http.MethodPost)
	authed.HandleFuncE("/api/personalized-news", srvr.getPersonalizedNews).Methods(http.MethodGet)

	// Token revocation
	authed.HandleFuncE("/api/logout", srvr.postLogout).Methods(http.MethodPost)

	slog.Debug("configured api server", "port", config.Port)

	return &srvr
}

// RunFetch runs one full ingestion pass and drops the article response
// cache so re-fetched rows aren't served stale.
func (s *Server) RunFetch(ctx context.Context) []fetch.Result {
	results := s.coordinator.Run(ctx)
	s.articleCache.Purge()

	return results
}

func (s *Server) postFetch(w http.ResponseWriter, r *http.Request) error {
	results := s.RunFetch(r.Context())

	return serverutil.WriteJSON(w, http.StatusOK, struct {
		Results []fetch.Result `json:"results"`
	}{Results: results})
}

package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	nderrs "github.com/newsdeskhq/newsdesk/internal/errors"
	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
	"github.com/newsdeskhq/newsdesk/internal/serverutil"
)

type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

// bearerToken pulls the opaque token out of the Authorization header, or
// returns "" if none is presented.
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimPrefix(header, prefix)
}

// requireTokenMiddleware rejects requests without a valid bearer token
// and stashes the resolved user on the request context. Unauthenticated
// is surfaced distinctly from not-found.
func (s *Server) requireTokenMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthenticated(w)
				return
			}

			usr, err := s.identity.VerifyToken(r.Context(), token)
			if err != nil {
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, usr)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthenticated(w http.ResponseWriter) {
	err := serverutil.WriteJSON(w, http.StatusUnauthorized, nderrs.E("Unauthenticated", http.StatusUnauthorized))
	if err != nil {
		slog.Error("error writing response", "error", err)
	}
}

// requestUser returns the user the middleware resolved for this request.
func requestUser(r *http.Request) newsdesk.User {
	usr, _ := r.Context().Value(userKey).(newsdesk.User)
	return usr
}

// requestToken returns the raw bearer token presented on this request.
func requestToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}

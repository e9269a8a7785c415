package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireTokenMiddleware(t *testing.T) {
	s, repo := newTestServer(t)
	usr := testUser(t, repo)

	token, err := repo.IssueToken(context.Background(), usr.ID)
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler)
	defer srv.Close()

	get := func(t *testing.T, token string) *http.Response {
		t.Helper()

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/preferences", nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		return resp
	}

	t.Run("no token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(t, "").StatusCode)
	})

	t.Run("unknown token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(t, "bogus").StatusCode)
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		// No preferences saved yet, so the handler's 404 proves the
		// middleware let the request through
		assert.Equal(t, http.StatusNotFound, get(t, token).StatusCode)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/logout", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, http.StatusUnauthorized, get(t, token).StatusCode)
	})
}

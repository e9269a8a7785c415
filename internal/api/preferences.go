package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	nderrs "github.com/newsdeskhq/newsdesk/internal/errors"
	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
	"github.com/newsdeskhq/newsdesk/internal/serverutil"
)

const maxPreferenceLen = 255

// SetPreferencesRequest carries the raw preference arrays. Fields are
// kept as raw JSON so a non-array or non-string element surfaces as a
// field-level validation detail instead of a bare decode failure.
type SetPreferencesRequest struct {
	Sources    json.RawMessage `json:"sources"`
	Categories json.RawMessage `json:"categories"`
	Authors    json.RawMessage `json:"authors"`

	sources    []string
	categories []string
	authors    []string
}

func (p *SetPreferencesRequest) Validate() error {
	// A body of literal JSON null decodes without error but leaves the
	// request nil.
	if p == nil {
		return nderrs.E("request body is required", http.StatusBadRequest)
	}

	var details []nderrs.Detail

	p.sources, details = parseStringArray("sources", p.Sources, details)
	p.categories, details = parseStringArray("categories", p.Categories, details)
	p.authors, details = parseStringArray("authors", p.Authors, details)

	if len(details) > 0 {
		return nderrs.E("validation failed", http.StatusUnprocessableEntity, details)
	}

	return nil
}

// parseStringArray validates one preference dimension: an optional array
// of strings, each at most 255 chars.
func parseStringArray(field string, raw json.RawMessage, details []nderrs.Detail) ([]string, []nderrs.Detail) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, details
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, append(details, nderrs.Detail{
			Field: field,
			Error: fmt.Sprintf("%s must be an array of strings", field),
		})
	}

	for i, v := range values {
		if len(v) > maxPreferenceLen {
			details = append(details, nderrs.Detail{
				Field: fmt.Sprintf("%s.%d", field, i),
				Error: fmt.Sprintf("must not be longer than %d characters", maxPreferenceLen),
			})
		}
	}

	return values, details
}

type PreferenceResp struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	Sources    newsdesk.StringSet `json:"sources"`
	Categories newsdesk.StringSet `json:"categories"`
	Authors    newsdesk.StringSet `json:"authors"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func apiPreference(pref newsdesk.UserPreference) PreferenceResp {
	return PreferenceResp{
		ID:         pref.ID,
		UserID:     pref.UserID,
		Sources:    pref.Sources,
		Categories: pref.Categories,
		Authors:    pref.Authors,
		CreatedAt:  pref.CreatedAt,
		UpdatedAt:  pref.UpdatedAt,
	}
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) error {
	usr := requestUser(r)

	pref, err := s.repo.Preference(r.Context(), usr.ID)
	if errors.Is(err, newsdesk.ErrNoPreferences) {
		return nderrs.E("No preferences found", http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, struct {
		Data PreferenceResp `json:"data"`
	}{Data: apiPreference(pref)})
}

func (s *Server) postPreferences(w http.ResponseWriter, r *http.Request) error {
	usr := requestUser(r)

	body, err := serverutil.DecodeValid[*SetPreferencesRequest](r.Body)
	if err != nil {
		return err
	}

	pref, err := s.repo.UpsertPreference(r.Context(), newsdesk.UserPreference{
		UserID:     usr.ID,
		Sources:    newsdesk.Normalize(body.sources),
		Categories: newsdesk.Normalize(body.categories),
		Authors:    newsdesk.Normalize(body.authors),
	})
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, struct {
		Message     string         `json:"message"`
		Preferences PreferenceResp `json:"preferences"`
	}{
		Message:     "Preferences updated successfully",
		Preferences: apiPreference(pref),
	})
}

func (s *Server) getPersonalizedNews(w http.ResponseWriter, r *http.Request) error {
	var (
		ctx  = r.Context()
		usr  = requestUser(r)
		page = parsePage(r)
	)

	pref, err := s.repo.Preference(ctx, usr.ID)
	if errors.Is(err, newsdesk.ErrNoPreferences) {
		return nderrs.E("No preferences found", http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	result, err := s.repo.ListPreferred(ctx, pref, perPage, (page-1)*perPage)
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, articleListResp(r, page, result))
}

func (s *Server) postLogout(w http.ResponseWriter, r *http.Request) error {
	if err := s.identity.RevokeToken(r.Context(), requestToken(r)); err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
	}{Message: "Logout successful"})
}

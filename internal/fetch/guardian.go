package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

const defaultGuardianBaseURL = "https://content.guardianapis.com"

// Response shape of the Guardian content search endpoint.
type guardianResp struct {
	Response struct {
		Status  string `json:"status"`
		Results []struct {
			SectionName        string  `json:"sectionName"`
			WebPublicationDate *string `json:"webPublicationDate"`
			WebURL             string  `json:"webUrl"`
			Fields             struct {
				Headline  string  `json:"headline"`
				TrailText *string `json:"trailText"`
				Byline    *string `json:"byline"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

// GuardianAdapter reads the technology section from the Guardian's
// content API.
type GuardianAdapter struct {
	// BaseURL overrides the live endpoint, for tests.
	BaseURL string

	apiKey string
}

func NewGuardian(apiKey string) *GuardianAdapter {
	return &GuardianAdapter{
		BaseURL: defaultGuardianBaseURL,
		apiKey:  apiKey,
	}
}

func (a *GuardianAdapter) Name() string {
	return "The Guardian"
}

func (a *GuardianAdapter) Fetch(ctx context.Context) ([]newsdesk.Article, error) {
	query := url.Values{
		"api-key":     {a.apiKey},
		"section":     {"technology"},
		"show-fields": {"headline,byline,trailText,webPublicationDate,webUrl"},
		"page-size":   {"10"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %s", err)
	}
	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error searching content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body guardianResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	if body.Response.Status != "ok" {
		return nil, fmt.Errorf("unexpected api status: %q", body.Response.Status)
	}

	articles := []newsdesk.Article{}
	for _, item := range body.Response.Results {
		if item.WebURL == "" || item.Fields.Headline == "" {
			continue
		}
		articles = append(articles, newsdesk.Article{
			Title:       sanitize(item.Fields.Headline),
			Description: sanitizeOpt(item.Fields.TrailText),
			Author:      sanitizeOpt(item.Fields.Byline),
			Source:      a.Name(),
			Category:    orGeneral(item.SectionName),
			URL:         item.WebURL,
			PublishedAt: item.WebPublicationDate,
		})
	}

	return articles, nil
}

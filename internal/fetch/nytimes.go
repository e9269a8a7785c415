package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

const defaultNYTimesBaseURL = "https://api.nytimes.com"

// Response shape of the NYT top stories endpoint.
type nyTimesResp struct {
	Status  string `json:"status"`
	Results []struct {
		Title         string  `json:"title"`
		Abstract      *string `json:"abstract"`
		Byline        *string `json:"byline"`
		Section       string  `json:"section"`
		URL           string  `json:"url"`
		PublishedDate *string `json:"published_date"`
	} `json:"results"`
}

// NYTimesAdapter reads the technology top stories from the New York
// Times API.
type NYTimesAdapter struct {
	// BaseURL overrides the live endpoint, for tests.
	BaseURL string

	apiKey string
}

func NewNYTimes(apiKey string) *NYTimesAdapter {
	return &NYTimesAdapter{
		BaseURL: defaultNYTimesBaseURL,
		apiKey:  apiKey,
	}
}

func (a *NYTimesAdapter) Name() string {
	return "New York Times"
}

func (a *NYTimesAdapter) Fetch(ctx context.Context) ([]newsdesk.Article, error) {
	query := url.Values{"api-key": {a.apiKey}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/svc/topstories/v2/technology.json?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %s", err)
	}
	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting top stories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body nyTimesResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	if body.Status != "OK" {
		return nil, fmt.Errorf("unexpected api status: %q", body.Status)
	}

	articles := []newsdesk.Article{}
	for _, item := range body.Results {
		if item.URL == "" || item.Title == "" {
			continue
		}
		articles = append(articles, newsdesk.Article{
			Title:       sanitize(item.Title),
			Description: sanitizeOpt(item.Abstract),
			Author:      sanitizeOpt(item.Byline),
			Source:      a.Name(),
			Category:    orGeneral(item.Section),
			URL:         item.URL,
			PublishedAt: item.PublishedDate,
		})
	}

	return articles, nil
}

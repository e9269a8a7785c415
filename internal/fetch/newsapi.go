package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/newsdeskhq/newsdesk/internal/newsdesk"
)

const defaultNewsAPIBaseURL = "https://newsapi.org"

// Response shape of newsapi.org's top-headlines endpoint.
type newsAPIResp struct {
	Status   string `json:"status"`
	Articles []struct {
		Author      *string `json:"author"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		URL         string  `json:"url"`
		PublishedAt *string `json:"publishedAt"`
	} `json:"articles"`
}

// NewsAPIAdapter reads top headlines from newsapi.org. Two providers ride
// this API: the general NewsAPI feed and the BBC News source feed, which
// differ only in their fixed query and display name.
type NewsAPIAdapter struct {
	// BaseURL overrides the live endpoint, for tests.
	BaseURL string

	name   string
	apiKey string
	query  url.Values
}

// NewNewsAPI fetches US technology top headlines under the "NewsAPI"
// source label.
func NewNewsAPI(apiKey string) *NewsAPIAdapter {
	return &NewsAPIAdapter{
		BaseURL: defaultNewsAPIBaseURL,
		name:    "NewsAPI",
		apiKey:  apiKey,
		query: url.Values{
			"country":  {"us"},
			"category": {"technology"},
			"pageSize": {"10"},
		},
	}
}

// NewBBC fetches the bbc-news source feed under the "BBC News" label.
func NewBBC(apiKey string) *NewsAPIAdapter {
	return &NewsAPIAdapter{
		BaseURL: defaultNewsAPIBaseURL,
		name:    "BBC News",
		apiKey:  apiKey,
		query: url.Values{
			"sources":  {"bbc-news"},
			"pageSize": {"10"},
		},
	}
}

func (a *NewsAPIAdapter) Name() string {
	return a.name
}

func (a *NewsAPIAdapter) Fetch(ctx context.Context) ([]newsdesk.Article, error) {
	query := url.Values{"apiKey": {a.apiKey}}
	for k, vs := range a.query {
		query[k] = vs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/v2/top-headlines?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %s", err)
	}
	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting top headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body newsAPIResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("unexpected api status: %q", body.Status)
	}

	articles := []newsdesk.Article{}
	for _, item := range body.Articles {
		if item.URL == "" || item.Title == "" {
			continue
		}
		articles = append(articles, newsdesk.Article{
			Title:       sanitize(item.Title),
			Description: sanitizeOpt(item.Description),
			Author:      sanitizeOpt(item.Author),
			Source:      a.name,
			// Top-headlines responses carry no per-article section.
			Category:    orGeneral(""),
			URL:         item.URL,
			PublishedAt: item.PublishedAt,
		})
	}

	return articles, nil
}

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Keats0206/fundtrack/internal/model"
)

// PerplexityClient calls the Perplexity search API
type PerplexityClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type perplexityRequest struct {
	Query            string   `json:"query"`
	MaxResults       int      `json:"max_results,omitempty"`
	MaxTokensPerPage int      `json:"max_tokens_per_page,omitempty"`
	DomainFilter     []string `json:"search_domain_filter,omitempty"`
}

type perplexityResponse struct {
	ID      string            `json:"id"`
	Results []json.RawMessage `json:"results"`
}

type perplexityResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

// NewPerplexityClient creates a client from the search and HTTP settings
func NewPerplexityClient(cfg model.SearchConfig, httpCfg model.HTTPConfig) (*PerplexityClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("perplexity: %w", ErrMissingAPIKey)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.perplexity.ai"
	}

	return &PerplexityClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(cfg.Timeout, httpCfg),
	}, nil
}

// Search runs q and maps each result to a NewsItem.
// The snippet falls back to the page content when the API omits it.
func (c *PerplexityClient) Search(ctx context.Context, q Query) ([]model.NewsItem, error) {
	body, err := json.Marshal(perplexityRequest{
		Query:            q.Text,
		MaxResults:       q.MaxResults,
		MaxTokensPerPage: q.MaxTokensPerPage,
		DomainFilter:     q.DomainFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, err := do(c.httpClient, req)
	if err != nil {
		return nil, fmt.Errorf("perplexity search: %w", err)
	}

	var resp perplexityResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	items := make([]model.NewsItem, 0, len(resp.Results))
	for _, raw := range resp.Results {
		var r perplexityResult
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		snippet := r.Snippet
		if snippet == "" {
			snippet = r.Content
		}
		items = append(items, model.NewsItem{
			Title:       r.Title,
			Snippet:     snippet,
			URL:         r.URL,
			PublishedAt: r.Date,
			RawPayload:  raw,
		})
	}
	return items, nil
}

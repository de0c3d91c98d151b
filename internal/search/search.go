package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Keats0206/fundtrack/internal/model"
	"github.com/Keats0206/fundtrack/internal/util"
)

// ErrMissingAPIKey is returned when a client is built without credentials
var ErrMissingAPIKey = errors.New("api key is not configured")

// maxResponseBytes caps API response bodies
const maxResponseBytes = 5 << 20

// Searcher runs a single web search query
type Searcher interface {
	Search(ctx context.Context, q Query) ([]model.NewsItem, error)
}

// PeopleSearcher looks up professional profiles
type PeopleSearcher interface {
	SearchPeople(ctx context.Context, q PeopleQuery) ([]model.Person, error)
}

// Query is one search request
type Query struct {
	Text             string
	MaxResults       int
	MaxTokensPerPage int
	DomainFilter     []string
}

// PeopleQuery selects people by employer, optionally narrowed by role and location
type PeopleQuery struct {
	Company  string
	Role     string
	Location string
}

// StatusError is a non-2xx API response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}

func newHTTPClient(timeout time.Duration, httpCfg model.HTTPConfig) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		},
	}
}

// do executes req and returns the body of a 2xx response
func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := string(body)
		if len(text) > 300 {
			text = text[:300]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}
	return body, nil
}

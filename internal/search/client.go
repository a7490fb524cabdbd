// Package search provides the web retrieval capability consumed by the
// orchestrator. It talks to a SearXNG instance over its JSON API and returns
// plain-text snippets; nothing here parses or scrapes pages.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	// maxResponseSize bounds how much of the search response is read.
	maxResponseSize = 1 << 20 // 1MB

	defaultTimeout = 15 * time.Second
)

// ErrNoResults indicates the backend answered but returned an empty result list.
var ErrNoResults = errors.New("search returned no results")

// Client queries a SearXNG instance.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a search client for the SearXNG instance at baseURL.
// A nil httpClient falls back to a pooled client with a request timeout.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("search base URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}, nil
}

// searchResponse is the subset of the SearXNG JSON payload we consume.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Search submits query and returns up to count result snippets, in backend
// order. Each snippet is the result's content text, falling back to its
// title when the engine provides no excerpt.
func (c *Client) Search(ctx context.Context, query string, count int) ([]string, error) {
	if query == "" {
		return nil, errors.New("empty query")
	}
	if count <= 0 {
		count = 1
	}

	u := fmt.Sprintf("%s/search?q=%s&format=json", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("search backend returned non-OK status",
			"status", resp.StatusCode, "query_len", len(query))
		return nil, fmt.Errorf("search backend status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, ErrNoResults
	}

	snippets := make([]string, 0, count)
	for _, r := range parsed.Results {
		if len(snippets) == count {
			break
		}
		snippet := r.Content
		if snippet == "" {
			snippet = r.Title
		}
		if snippet == "" {
			continue
		}
		snippets = append(snippets, snippet)
	}

	c.logger.Debug("search completed", "results", len(snippets))
	return snippets, nil
}

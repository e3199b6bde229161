package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"anidex/internal/config"
	"anidex/internal/logging"
	"anidex/internal/match"
)

const defaultRetryBackoff = 1500 * time.Millisecond

// Client talks to the TMDB v3 REST API.
type Client struct {
	baseURL      string
	imageBaseURL string
	language     string
	maxRetries   int
	retryBackoff time.Duration
	httpClient   *http.Client
	logger       *slog.Logger

	mu       sync.Mutex
	tokens   []string
	tokenIdx int
}

// Option customizes the TMDB client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff unit (primarily for tests).
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryBackoff = d
		}
	}
}

// NewClient constructs a TMDB client from configuration.
func NewClient(cfg config.TMDB, logger *slog.Logger, opts ...Option) (*Client, error) {
	tokens := make([]string, 0, len(cfg.Tokens))
	for _, token := range cfg.Tokens {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	if len(tokens) == 0 {
		return nil, errors.New("tmdb: at least one API token is required")
	}

	client := &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		imageBaseURL: cfg.ImageBaseURL,
		language:     cfg.Language,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: defaultRetryBackoff,
		httpClient:   &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second},
		logger:       logging.NewComponentLogger(logger, "tmdb"),
		tokens:       tokens,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// nextToken rotates through the configured tokens round-robin.
func (c *Client) nextToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.tokens[c.tokenIdx]
	c.tokenIdx = (c.tokenIdx + 1) % len(c.tokens)
	return token
}

// get performs an authenticated GET with linear backoff on transient
// failures (429 and 5xx). Each attempt uses the next token in rotation.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if attempt > 1 {
			if err := sleepWithContext(ctx, c.retryBackoff*time.Duration(attempt-1)); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("tmdb: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.nextToken())
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("tmdb: request failed: %w", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("tmdb: read body: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("tmdb: http %d", resp.StatusCode)
			c.logger.Warn("transient failure, retrying",
				logging.String("path", path),
				logging.Int("status", resp.StatusCode),
				logging.Int("attempt", attempt))
			continue
		case resp.StatusCode >= http.StatusBadRequest:
			return fmt.Errorf("tmdb: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("tmdb: decode response: %w", err)
		}
		return nil
	}
	return lastErr
}

type multiSearchResponse struct {
	Results []struct {
		ID        int64  `json:"id"`
		MediaType string `json:"media_type"`
		Name      string `json:"name"`
		Title     string `json:"title"`
	} `json:"results"`
}

// Search implements the matcher's search provider over TMDB multi search.
// TV results carry their display title in "name", movies in "title".
func (c *Client) Search(ctx context.Context, query string) ([]match.SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if c.language != "" {
		params.Set("language", c.language)
	}

	var decoded multiSearchResponse
	if err := c.get(ctx, "/search/multi", params, &decoded); err != nil {
		return nil, err
	}

	results := make([]match.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		title := r.Name
		if title == "" {
			title = r.Title
		}
		results = append(results, match.SearchResult{
			ID:        r.ID,
			MediaType: r.MediaType,
			Title:     title,
		})
	}
	return results, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

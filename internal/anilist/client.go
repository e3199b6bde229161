package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"anidex/internal/catalog"
	"anidex/internal/config"
	"anidex/internal/logging"
)

const defaultHTTPTimeout = 30 * time.Second

// mediaQuery pages through AniList's anime catalog ordered by popularity so
// partial fetches still cover the titles people actually look up.
const mediaQuery = `query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    pageInfo {
      hasNextPage
    }
    media(type: ANIME, sort: POPULARITY_DESC) {
      id
      title {
        romaji
        english
        native
      }
      format
      status
      episodes
      seasonYear
      genres
      averageScore
      popularity
    }
  }
}`

// Client talks to the AniList GraphQL endpoint.
type Client struct {
	baseURL      string
	userAgent    string
	pageSize     int
	pageDelay    time.Duration
	maxRetries   int
	retryBackoff time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

// Option customizes the AniList client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the rate-limit backoff unit (primarily for
// tests).
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryBackoff = d
		}
	}
}

// WithPageDelay overrides the courtesy delay between pages (primarily for
// tests).
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.pageDelay = d
		}
	}
}

// NewClient constructs an AniList client from configuration.
func NewClient(cfg config.AniList, logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		userAgent:    cfg.UserAgent,
		pageSize:     cfg.PageSize,
		pageDelay:    time.Duration(cfg.PageDelayMS) * time.Millisecond,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: 10 * time.Second,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		logger:       logging.NewComponentLogger(logger, "anilist"),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.pageSize < 1 {
		client.pageSize = config.DefaultAniListPageSize
	}
	return client
}

// FetchAll retrieves the complete catalog, page by page. maxPages bounds the
// fetch when positive; zero means every page.
func (c *Client) FetchAll(ctx context.Context, maxPages int) ([]*catalog.Anime, error) {
	var items []*catalog.Anime

	for page := 1; ; page++ {
		if maxPages > 0 && page > maxPages {
			break
		}
		if page > 1 && c.pageDelay > 0 {
			if err := sleepWithContext(ctx, c.pageDelay); err != nil {
				return items, err
			}
		}

		pageItems, hasNext, err := c.fetchPage(ctx, page)
		if err != nil {
			return items, fmt.Errorf("anilist page %d: %w", page, err)
		}
		items = append(items, pageItems...)

		c.logger.Debug("page fetched",
			logging.Int("page", page),
			logging.Int("items", len(pageItems)),
			logging.Int("total", len(items)))

		if !hasNext {
			break
		}
	}

	c.logger.Info("catalog fetched", logging.Int("items", len(items)))
	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]*catalog.Anime, bool, error) {
	payload, err := json.Marshal(graphqlRequest{
		Query: mediaQuery,
		Variables: map[string]any{
			"page":    page,
			"perPage": c.pageSize,
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("encode request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		body, status, err := c.post(ctx, payload)
		if err != nil {
			return nil, false, err
		}

		if status == http.StatusTooManyRequests {
			if attempt > c.maxRetries {
				return nil, false, fmt.Errorf("rate limited after %d attempts", attempt)
			}
			wait := c.retryBackoff * time.Duration(attempt)
			c.logger.Warn("rate limited, backing off",
				logging.Int("page", page),
				logging.Int("attempt", attempt),
				logging.Duration("wait", wait))
			if err := sleepWithContext(ctx, wait); err != nil {
				return nil, false, err
			}
			continue
		}
		if status >= http.StatusBadRequest {
			return nil, false, fmt.Errorf("http %d: %s", status, strings.TrimSpace(string(body)))
		}

		var decoded graphqlResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, false, fmt.Errorf("decode response: %w", err)
		}
		if len(decoded.Errors) > 0 {
			return nil, false, fmt.Errorf("graphql error: %s", decoded.Errors[0].Message)
		}

		items := make([]*catalog.Anime, 0, len(decoded.Data.Page.Media))
		for _, media := range decoded.Data.Page.Media {
			items = append(items, media.toAnime())
		}
		return items, decoded.Data.Page.PageInfo.HasNextPage, nil
	}
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Page struct {
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Media []mediaEntry `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type mediaEntry struct {
	ID    int64 `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	Format       string   `json:"format"`
	Status       string   `json:"status"`
	Episodes     int      `json:"episodes"`
	SeasonYear   int      `json:"seasonYear"`
	Genres       []string `json:"genres"`
	AverageScore float64  `json:"averageScore"`
	Popularity   int64    `json:"popularity"`
}

func (m mediaEntry) toAnime() *catalog.Anime {
	return &catalog.Anime{
		AnilistID: m.ID,
		Titles: catalog.TitleSet{
			Romaji:  strings.TrimSpace(m.Title.Romaji),
			English: strings.TrimSpace(m.Title.English),
			Native:  strings.TrimSpace(m.Title.Native),
		},
		Format:       m.Format,
		Status:       m.Status,
		Episodes:     m.Episodes,
		Year:         m.SeasonYear,
		Genres:       m.Genres,
		AnilistScore: m.AverageScore,
		Popularity:   m.Popularity,
	}
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

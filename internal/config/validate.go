package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values that would break a pipeline
// run. It collects every problem it finds rather than stopping at the first.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must be set")
	}

	if strings.TrimSpace(c.AniList.BaseURL) == "" {
		problems = append(problems, "anilist.base_url must be set")
	}
	if c.AniList.PageSize < 1 || c.AniList.PageSize > 50 {
		problems = append(problems, fmt.Sprintf("anilist.page_size must be between 1 and 50, got %d", c.AniList.PageSize))
	}
	if c.AniList.PageDelayMS < 0 {
		problems = append(problems, "anilist.page_delay_ms must not be negative")
	}
	if c.AniList.MaxRetries < 0 {
		problems = append(problems, "anilist.max_retries must not be negative")
	}

	if strings.TrimSpace(c.TMDB.BaseURL) == "" {
		problems = append(problems, "tmdb.base_url must be set")
	}
	if len(c.TMDB.Tokens) == 0 {
		problems = append(problems, "at least one TMDB API token is required (tmdb.tokens or TMDB_TOKEN_1..TMDB_TOKEN_5)")
	}
	if c.TMDB.TimeoutSecs <= 0 {
		problems = append(problems, "tmdb.timeout_seconds must be positive")
	}

	if c.Matching.FastMatchThreshold < 0 || c.Matching.FastMatchThreshold > 1 {
		problems = append(problems, fmt.Sprintf("matching.fast_match_threshold must be within [0, 1], got %g", c.Matching.FastMatchThreshold))
	}
	if c.Matching.AcceptThreshold < 0 || c.Matching.AcceptThreshold > 1 {
		problems = append(problems, fmt.Sprintf("matching.accept_threshold must be within [0, 1], got %g", c.Matching.AcceptThreshold))
	}
	if c.Matching.FastMatchThreshold < c.Matching.AcceptThreshold {
		problems = append(problems, "matching.fast_match_threshold must not be below matching.accept_threshold")
	}
	if c.Matching.ResultCap < 1 {
		problems = append(problems, "matching.result_cap must be at least 1")
	}
	if c.Matching.SearchDelayMS < 0 {
		problems = append(problems, "matching.search_delay_ms must not be negative")
	}

	if c.Enrichment.RequestDelayMS < 0 {
		problems = append(problems, "enrichment.request_delay_ms must not be negative")
	}
	if c.Enrichment.CacheEnabled && strings.TrimSpace(c.Enrichment.CachePath) == "" {
		problems = append(problems, "enrichment.cache_path must be set when the cache is enabled")
	}
	if c.Enrichment.MemoryCacheSize < 1 {
		problems = append(problems, "enrichment.memory_cache_size must be at least 1")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

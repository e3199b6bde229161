package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
}

// AniList contains configuration for the source catalog API.
type AniList struct {
	BaseURL     string `toml:"base_url"`
	UserAgent   string `toml:"user_agent"`
	PageSize    int    `toml:"page_size"`
	PageDelayMS int    `toml:"page_delay_ms"`
	MaxRetries  int    `toml:"max_retries"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	BaseURL      string   `toml:"base_url"`
	ImageBaseURL string   `toml:"image_base_url"`
	Tokens       []string `toml:"tokens"`
	Language     string   `toml:"language"`
	TimeoutSecs  int      `toml:"timeout_seconds"`
	MaxRetries   int      `toml:"max_retries"`
}

// Matching contains the title-matching policy knobs.
type Matching struct {
	// FastMatchThreshold short-circuits candidate evaluation when crossed.
	FastMatchThreshold float64 `toml:"fast_match_threshold"`
	// AcceptThreshold is the minimum best-candidate score for a match.
	AcceptThreshold float64 `toml:"accept_threshold"`
	// ResultCap bounds how many search results per query are scored.
	ResultCap int `toml:"result_cap"`
	// SearchDelayMS paces consecutive TMDB search calls.
	SearchDelayMS int `toml:"search_delay_ms"`
}

// Enrichment contains configuration for the TMDB detail-fetch stage.
type Enrichment struct {
	RequestDelayMS    int    `toml:"request_delay_ms"`
	CacheEnabled      bool   `toml:"cache_enabled"`
	CachePath         string `toml:"cache_path"`
	MemoryCacheSize   int    `toml:"memory_cache_size"`
	LocalizedLanguage string `toml:"localized_language"`
	FallbackLanguage  string `toml:"fallback_language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for anidex.
type Config struct {
	Paths      Paths      `toml:"paths"`
	AniList    AniList    `toml:"anilist"`
	TMDB       TMDB       `toml:"tmdb"`
	Matching   Matching   `toml:"matching"`
	Enrichment Enrichment `toml:"enrichment"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/anidex/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and environment tokens folded in.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("anidex.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// normalize expands paths and folds TMDB tokens in from the environment
// (TMDB_TOKEN_1 through TMDB_TOKEN_5, appended after any configured tokens).
func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.LogDir, &c.Paths.CacheDir, &c.Enrichment.CachePath} {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	tokens := make([]string, 0, len(c.TMDB.Tokens)+5)
	for _, token := range c.TMDB.Tokens {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	for i := 1; i <= 5; i++ {
		if token := strings.TrimSpace(os.Getenv(fmt.Sprintf("TMDB_TOKEN_%d", i))); token != "" {
			tokens = append(tokens, token)
		}
	}
	c.TMDB.Tokens = tokens

	return nil
}

// EnsureDirectories creates the directories a pipeline run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SearchDelay returns the matcher pacing delay as a duration.
func (c *Config) SearchDelay() time.Duration {
	return time.Duration(c.Matching.SearchDelayMS) * time.Millisecond
}

// EnrichDelay returns the enrichment pacing delay as a duration.
func (c *Config) EnrichDelay() time.Duration {
	return time.Duration(c.Enrichment.RequestDelayMS) * time.Millisecond
}

// PageDelay returns the AniList paging delay as a duration.
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.AniList.PageDelayMS) * time.Millisecond
}

func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

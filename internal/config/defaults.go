package config

// Default configuration values.
const (
	DefaultAniListBaseURL   = "https://graphql.anilist.co"
	DefaultAniListUserAgent = "anidex/1.0"
	DefaultAniListPageSize  = 50
	DefaultAniListPageDelay = 800
	DefaultAniListRetries   = 3

	DefaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	DefaultTMDBImageBaseURL = "https://image.tmdb.org/t/p/"
	DefaultTMDBLanguage     = "en-US"
	DefaultTMDBTimeoutSecs  = 15
	DefaultTMDBRetries      = 3

	DefaultFastMatchThreshold = 0.92
	DefaultAcceptThreshold    = 0.75
	DefaultResultCap          = 5
	DefaultSearchDelay        = 100

	DefaultEnrichDelay       = 200
	DefaultMemoryCacheSize   = 512
	DefaultLocalizedLanguage = "pt-BR"
	DefaultFallbackLanguage  = "en-US"
)

// Default returns a Config populated with the repository defaults. Callers
// normally go through Load, which layers a config file on top of these.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  "~/.local/share/anidex/data",
			LogDir:   "~/.local/share/anidex/logs",
			CacheDir: "~/.cache/anidex",
		},
		AniList: AniList{
			BaseURL:     DefaultAniListBaseURL,
			UserAgent:   DefaultAniListUserAgent,
			PageSize:    DefaultAniListPageSize,
			PageDelayMS: DefaultAniListPageDelay,
			MaxRetries:  DefaultAniListRetries,
		},
		TMDB: TMDB{
			BaseURL:      DefaultTMDBBaseURL,
			ImageBaseURL: DefaultTMDBImageBaseURL,
			Language:     DefaultTMDBLanguage,
			TimeoutSecs:  DefaultTMDBTimeoutSecs,
			MaxRetries:   DefaultTMDBRetries,
		},
		Matching: Matching{
			FastMatchThreshold: DefaultFastMatchThreshold,
			AcceptThreshold:    DefaultAcceptThreshold,
			ResultCap:          DefaultResultCap,
			SearchDelayMS:      DefaultSearchDelay,
		},
		Enrichment: Enrichment{
			RequestDelayMS:    DefaultEnrichDelay,
			CacheEnabled:      true,
			CachePath:         "~/.cache/anidex/enrich.db",
			MemoryCacheSize:   DefaultMemoryCacheSize,
			LocalizedLanguage: DefaultLocalizedLanguage,
			FallbackLanguage:  DefaultFallbackLanguage,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

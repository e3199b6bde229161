package match

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"anidex/internal/catalog"
	"anidex/internal/logging"
	"anidex/internal/normalize"
	"anidex/internal/similarity"
)

// Default policy constants. Both thresholds are configurable through options;
// the defaults match the tuning the catalog was built with.
const (
	DefaultFastMatchThreshold = 0.92
	DefaultAcceptThreshold    = 0.75
	DefaultResultCap          = 5
)

// SearchResult is one entry returned by a search provider, already reduced
// to the fields the matcher consumes.
type SearchResult struct {
	ID        int64
	MediaType string
	Title     string
}

// SearchProvider performs a fuzzy full-text search against the second
// catalog. Implementations own retry and timeout policy; the matcher treats
// any error as an empty result list.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// Matcher classifies catalog items against a search provider.
type Matcher struct {
	provider  SearchProvider
	logger    *slog.Logger
	fastMatch float64
	accept    float64
	resultCap int
	pacing    time.Duration
	score     func(a, b string) float64
}

// Option customises the Matcher.
type Option func(*Matcher)

// WithThresholds overrides the fast-match and acceptance score thresholds.
func WithThresholds(fastMatch, accept float64) Option {
	return func(m *Matcher) {
		if fastMatch > 0 {
			m.fastMatch = fastMatch
		}
		if accept > 0 {
			m.accept = accept
		}
	}
}

// WithPacing sets the courtesy delay between consecutive provider calls.
func WithPacing(delay time.Duration) Option {
	return func(m *Matcher) {
		if delay >= 0 {
			m.pacing = delay
		}
	}
}

// WithResultCap bounds how many results per query are considered.
func WithResultCap(cap int) Option {
	return func(m *Matcher) {
		if cap > 0 {
			m.resultCap = cap
		}
	}
}

// WithScoreFunc overrides the similarity scorer (primarily for tests).
func WithScoreFunc(score func(a, b string) float64) Option {
	return func(m *Matcher) {
		if score != nil {
			m.score = score
		}
	}
}

// NewMatcher constructs a matcher bound to the supplied search provider.
func NewMatcher(provider SearchProvider, logger *slog.Logger, opts ...Option) *Matcher {
	m := &Matcher{
		provider:  provider,
		logger:    logging.NewComponentLogger(logger, "match"),
		fastMatch: DefaultFastMatchThreshold,
		accept:    DefaultAcceptThreshold,
		resultCap: DefaultResultCap,
		score:     similarity.Score,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// searchTitle pairs the raw display text sent to the provider with the
// normalized form used for scoring and deduplication.
type searchTitle struct {
	raw        string
	normalized string
}

// candidate is one scored search result awaiting best-of selection.
type candidate struct {
	id        int64
	mediaType catalog.MediaType
	score     float64
}

// FindBestMatch classifies one catalog item. It always returns a decision:
// missing titles resolve to NotFound, provider failures count as empty
// result sets, and only threshold policy separates Matched from NotMatched.
func (m *Matcher) FindBestMatch(ctx context.Context, item *catalog.Anime) catalog.Match {
	titles := searchTitles(item)
	if len(titles) == 0 {
		return catalog.NotFound()
	}

	var pool []candidate
	for i, title := range titles {
		if i > 0 && m.pacing > 0 {
			if err := sleepWithContext(ctx, m.pacing); err != nil {
				break
			}
		}

		results, err := m.provider.Search(ctx, title.raw)
		if err != nil {
			// Retry/backoff is the provider's concern; a failed query is
			// just zero candidates for this title.
			m.logger.Warn("search failed",
				logging.String("query", title.raw),
				logging.Error(err))
			continue
		}
		if len(results) > m.resultCap {
			results = results[:m.resultCap]
		}

		for _, result := range results {
			mediaType := catalog.MediaType(result.MediaType)
			if !mediaType.IsValid() {
				continue
			}
			if strings.TrimSpace(result.Title) == "" {
				continue
			}

			score := m.score(title.normalized, normalize.Title(result.Title))
			if score >= m.fastMatch {
				// First candidate past the fast threshold wins outright,
				// in encounter order. Later search titles might score
				// higher, but bounding external calls is worth more here
				// than a marginally better match.
				m.logger.Debug("fast match",
					logging.String("query", title.raw),
					logging.Int64("tmdb_id", result.ID),
					logging.Float64("score", score))
				return catalog.Matched(result.ID, mediaType, catalog.MethodTitleSimilarityFast, score)
			}
			pool = append(pool, candidate{id: result.ID, mediaType: mediaType, score: score})
		}
	}

	if len(pool) == 0 {
		return catalog.NotFound()
	}

	// Stable max over insertion order: strict > keeps the first-seen
	// candidate on score ties.
	best := pool[0]
	for _, c := range pool[1:] {
		if c.score > best.score {
			best = c
		}
	}

	if best.score >= m.accept {
		return catalog.Matched(best.id, best.mediaType, catalog.MethodTitleSimilarity, best.score)
	}
	return catalog.NotMatched(catalog.MethodTitleSimilarity, best.score)
}

// searchTitles builds the ordered, deduplicated search title list for an
// item, preferring english, then romaji, then native. A variant is included
// only when its normalized form is non-empty and not already present.
func searchTitles(item *catalog.Anime) []searchTitle {
	normalized := item.Normalized
	if normalized.IsEmpty() {
		normalized = normalize.Set(item.Titles)
	}

	ordered := []searchTitle{
		{raw: item.Titles.English, normalized: normalized.English},
		{raw: item.Titles.Romaji, normalized: normalized.Romaji},
		{raw: item.Titles.Native, normalized: normalized.Native},
	}

	titles := make([]searchTitle, 0, len(ordered))
	seen := make(map[string]struct{}, len(ordered))
	for _, title := range ordered {
		if title.normalized == "" {
			continue
		}
		if _, ok := seen[title.normalized]; ok {
			continue
		}
		seen[title.normalized] = struct{}{}
		titles = append(titles, title)
	}
	return titles
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

package enrich

import (
	"context"
	"log/slog"
	"time"

	"anidex/internal/catalog"
	"anidex/internal/logging"
)

// Client fetches enrichment payloads for matched records.
type Client interface {
	Enrich(ctx context.Context, mediaType catalog.MediaType, tmdbID int64, localizedLang, fallbackLang string) (*catalog.Enrichment, error)
}

// Enricher walks a dataset and attaches TMDB detail payloads to every
// matched item.
type Enricher struct {
	client        Client
	cache         *Cache
	logger        *slog.Logger
	localizedLang string
	fallbackLang  string
	delay         time.Duration
}

// Option customizes the enricher.
type Option func(*Enricher)

// WithDelay overrides the pacing delay between API lookups.
func WithDelay(d time.Duration) Option {
	return func(e *Enricher) {
		if d >= 0 {
			e.delay = d
		}
	}
}

// WithLanguages overrides the localized and fallback languages.
func WithLanguages(localized, fallback string) Option {
	return func(e *Enricher) {
		e.localizedLang = localized
		e.fallbackLang = fallback
	}
}

// NewEnricher builds an enricher. cache may be nil to disable caching.
func NewEnricher(client Client, cache *Cache, logger *slog.Logger, opts ...Option) *Enricher {
	enricher := &Enricher{
		client:        client,
		cache:         cache,
		logger:        logging.NewComponentLogger(logger, "enrich"),
		localizedLang: "pt-BR",
		fallbackLang:  "en-US",
		delay:         200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(enricher)
	}
	return enricher
}

// Summary reports what one EnrichAll pass did.
type Summary struct {
	Enriched  int
	CacheHits int
	Failed    int
	Skipped   int
}

// EnrichAll attaches enrichment to every matched item in place. Individual
// lookup failures leave the item with explicit nulls and the run continues;
// only context cancellation aborts the pass.
func (e *Enricher) EnrichAll(ctx context.Context, items []*catalog.Anime) (Summary, error) {
	var summary Summary

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if item.Match.Status != catalog.StatusMatched {
			item.ApplyEnrichment(nil)
			summary.Skipped++
			continue
		}

		enrichment, hit, err := e.lookup(ctx, item.Match.MediaType, item.Match.TMDBID, summary.Enriched > 0)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			e.logger.Warn("enrichment failed",
				logging.String("title", item.DisplayTitle()),
				logging.Int64("tmdb_id", item.Match.TMDBID),
				logging.Error(err))
			item.ApplyEnrichment(nil)
			summary.Failed++
			continue
		}

		item.ApplyEnrichment(enrichment)
		summary.Enriched++
		if hit {
			summary.CacheHits++
		}
	}

	e.logger.Info("enrichment pass complete",
		logging.Int("enriched", summary.Enriched),
		logging.Int("cache_hits", summary.CacheHits),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}

// lookup consults the cache before the API. paceBefore delays only API
// calls, never cache hits.
func (e *Enricher) lookup(ctx context.Context, mediaType catalog.MediaType, tmdbID int64, paceBefore bool) (*catalog.Enrichment, bool, error) {
	if e.cache != nil {
		enrichment, ok, err := e.cache.Get(ctx, mediaType, tmdbID)
		if err != nil {
			e.logger.Warn("cache read failed", logging.Error(err))
		} else if ok {
			return enrichment, true, nil
		}
	}

	if paceBefore && e.delay > 0 {
		if err := sleepWithContext(ctx, e.delay); err != nil {
			return nil, false, err
		}
	}

	enrichment, err := e.client.Enrich(ctx, mediaType, tmdbID, e.localizedLang, e.fallbackLang)
	if err != nil {
		return nil, false, err
	}

	if e.cache != nil {
		if err := e.cache.Put(ctx, mediaType, tmdbID, enrichment); err != nil {
			e.logger.Warn("cache write failed", logging.Error(err))
		}
	}
	return enrichment, false, nil
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

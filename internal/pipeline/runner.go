package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"anidex/internal/anilist"
	"anidex/internal/catalog"
	"anidex/internal/config"
	"anidex/internal/enrich"
	"anidex/internal/export"
	"anidex/internal/logging"
	"anidex/internal/match"
	"anidex/internal/normalize"
	"anidex/internal/tmdb"
)

// Dataset file locations relative to the data directory.
const (
	RawFile        = "raw/catalog.json"
	NormalizedFile = "processed/normalized.json"
	MatchedFile    = "processed/matched.json"
	EnrichedFile   = "processed/enriched.json"
	FinalDir       = "final"
	IndexDir       = "indexes"

	lockFile = ".anidex.lock"
)

// ErrLocked indicates another process holds the data directory lock.
var ErrLocked = errors.New("another run holds the data directory lock")

// Fetcher retrieves the source catalog.
type Fetcher interface {
	FetchAll(ctx context.Context, maxPages int) ([]*catalog.Anime, error)
}

// Runner executes pipeline stages against one data directory.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	runID  string

	fetcher      Fetcher
	provider     match.SearchProvider
	enrichClient enrich.Client
}

// Option customizes the runner, mainly to inject collaborators in tests.
type Option func(*Runner)

// WithFetcher overrides the AniList client.
func WithFetcher(f Fetcher) Option {
	return func(r *Runner) { r.fetcher = f }
}

// WithSearchProvider overrides the TMDB search provider.
func WithSearchProvider(p match.SearchProvider) Option {
	return func(r *Runner) { r.provider = p }
}

// WithEnrichClient overrides the TMDB enrichment client.
func WithEnrichClient(c enrich.Client) Option {
	return func(r *Runner) { r.enrichClient = c }
}

// NewRunner builds a runner. Every log line it emits carries a fresh run id
// so interleaved logs from retried runs stay distinguishable.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}
	runID := uuid.NewString()
	runner := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline").With(logging.String("run_id", runID)),
		runID:  runID,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// RunID returns the correlation id for this runner's log lines.
func (r *Runner) RunID() string { return r.runID }

func (r *Runner) dataPath(rel string) string {
	return filepath.Join(r.cfg.Paths.DataDir, rel)
}

// withLock runs fn while holding the data directory lock. A held lock fails
// fast instead of queueing; two concurrent runs would corrupt the datasets.
func (r *Runner) withLock(fn func() error) error {
	if err := os.MkdirAll(r.cfg.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	lock := flock.New(r.dataPath(lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire data lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

// FetchSummary reports a fetch stage run.
type FetchSummary struct {
	Items int
}

// Fetch downloads the source catalog and writes the raw dataset. maxPages
// bounds the download when positive.
func (r *Runner) Fetch(ctx context.Context, maxPages int) (FetchSummary, error) {
	var summary FetchSummary
	err := r.withLock(func() error {
		var err error
		summary, err = r.fetch(ctx, maxPages)
		return err
	})
	return summary, err
}

func (r *Runner) fetch(ctx context.Context, maxPages int) (FetchSummary, error) {
	var summary FetchSummary
	fetcher := r.fetcher
	if fetcher == nil {
		fetcher = anilist.NewClient(r.cfg.AniList, r.logger)
	}
	items, err := fetcher.FetchAll(ctx, maxPages)
	if err != nil {
		return summary, err
	}
	if err := catalog.SaveDataset(r.dataPath(RawFile), items); err != nil {
		return summary, err
	}
	summary.Items = len(items)
	r.logger.Info("fetch stage complete", logging.Int("items", summary.Items))
	return summary, nil
}

// NormalizeSummary reports a normalize stage run.
type NormalizeSummary struct {
	Items int
}

// Normalize fills the working normalized title set on every raw item.
func (r *Runner) Normalize(ctx context.Context) (NormalizeSummary, error) {
	var summary NormalizeSummary
	err := r.withLock(func() error {
		var err error
		summary, err = r.normalizeStage(ctx)
		return err
	})
	return summary, err
}

func (r *Runner) normalizeStage(ctx context.Context) (NormalizeSummary, error) {
	var summary NormalizeSummary
	items, err := catalog.LoadDataset(r.dataPath(RawFile))
	if err != nil {
		return summary, err
	}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		item.Normalized = normalize.Set(item.Titles)
	}
	if err := catalog.SaveDataset(r.dataPath(NormalizedFile), items); err != nil {
		return summary, err
	}
	summary.Items = len(items)
	r.logger.Info("normalize stage complete", logging.Int("items", summary.Items))
	return summary, nil
}

// MatchSummary reports a match stage run.
type MatchSummary struct {
	Matched    int
	NotFound   int
	NotMatched int
	Skipped    int
}

// Match classifies every unprocessed item against TMDB. Items that already
// carry a decision are skipped, so an interrupted run picks up where it
// stopped.
func (r *Runner) Match(ctx context.Context) (MatchSummary, error) {
	var summary MatchSummary
	err := r.withLock(func() error {
		var err error
		summary, err = r.matchStage(ctx)
		return err
	})
	return summary, err
}

func (r *Runner) matchStage(ctx context.Context) (MatchSummary, error) {
	var summary MatchSummary
	items, err := catalog.LoadDataset(r.dataPath(NormalizedFile))
	if err != nil {
		return summary, err
	}

	provider := r.provider
	if provider == nil {
		client, err := r.newTMDBClient()
		if err != nil {
			return summary, err
		}
		provider = client
	}
	matcher := match.NewMatcher(provider, r.logger,
		match.WithThresholds(r.cfg.Matching.FastMatchThreshold, r.cfg.Matching.AcceptThreshold),
		match.WithResultCap(r.cfg.Matching.ResultCap),
		match.WithPacing(r.cfg.SearchDelay()))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if item.Match.Status != catalog.StatusNotProcessed {
			summary.Skipped++
			continue
		}
		item.ApplyMatch(matcher.FindBestMatch(ctx, item))
		switch item.Match.Status {
		case catalog.StatusMatched:
			summary.Matched++
		case catalog.StatusNotMatched:
			summary.NotMatched++
		default:
			summary.NotFound++
		}
	}

	if err := catalog.SaveDataset(r.dataPath(MatchedFile), items); err != nil {
		return summary, err
	}
	r.logger.Info("match stage complete",
		logging.Int("matched", summary.Matched),
		logging.Int("not_found", summary.NotFound),
		logging.Int("not_matched", summary.NotMatched),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}

// Enrich attaches TMDB detail payloads to every matched item.
func (r *Runner) Enrich(ctx context.Context) (enrich.Summary, error) {
	var summary enrich.Summary
	err := r.withLock(func() error {
		var err error
		summary, err = r.enrichStage(ctx)
		return err
	})
	return summary, err
}

func (r *Runner) enrichStage(ctx context.Context) (enrich.Summary, error) {
	var summary enrich.Summary
	items, err := catalog.LoadDataset(r.dataPath(MatchedFile))
	if err != nil {
		return summary, err
	}

	client := r.enrichClient
	if client == nil {
		tmdbClient, err := r.newTMDBClient()
		if err != nil {
			return summary, err
		}
		client = tmdbClient
	}

	var cache *enrich.Cache
	if r.cfg.Enrichment.CacheEnabled {
		store, err := enrich.OpenStore(r.cfg.Enrichment.CachePath)
		if err != nil {
			return summary, err
		}
		defer store.Close()
		cache, err = enrich.NewCache(r.cfg.Enrichment.MemoryCacheSize, store)
		if err != nil {
			return summary, err
		}
	}

	enricher := enrich.NewEnricher(client, cache, r.logger,
		enrich.WithDelay(r.cfg.EnrichDelay()),
		enrich.WithLanguages(r.cfg.Enrichment.LocalizedLanguage, r.cfg.Enrichment.FallbackLanguage))

	summary, err = enricher.EnrichAll(ctx, items)
	if err != nil {
		return summary, err
	}
	if err := catalog.SaveDataset(r.dataPath(EnrichedFile), items); err != nil {
		return summary, err
	}
	return summary, nil
}

// Export writes the published datasets and lookup tables.
func (r *Runner) Export(ctx context.Context) (export.Summary, error) {
	var summary export.Summary
	err := r.withLock(func() error {
		var err error
		summary, err = r.exportStage(ctx)
		return err
	})
	return summary, err
}

func (r *Runner) exportStage(ctx context.Context) (export.Summary, error) {
	var summary export.Summary
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	items, err := catalog.LoadDataset(r.dataPath(EnrichedFile))
	if err != nil {
		return summary, err
	}
	exporter, err := export.NewExporter(r.logger)
	if err != nil {
		return summary, err
	}
	return exporter.Run(items, r.dataPath(FinalDir), r.dataPath(IndexDir))
}

// RunSummary aggregates the per-stage summaries of a full pipeline run.
type RunSummary struct {
	Fetch     FetchSummary
	Normalize NormalizeSummary
	Match     MatchSummary
	Enrich    enrich.Summary
	Export    export.Summary
}

// Run executes every stage in order under a single lock acquisition.
func (r *Runner) Run(ctx context.Context, maxPages int) (RunSummary, error) {
	var summary RunSummary
	err := r.withLock(func() error {
		r.logger.Info("pipeline run starting")
		var err error
		if summary.Fetch, err = r.fetch(ctx, maxPages); err != nil {
			return fmt.Errorf("fetch stage: %w", err)
		}
		if summary.Normalize, err = r.normalizeStage(ctx); err != nil {
			return fmt.Errorf("normalize stage: %w", err)
		}
		if summary.Match, err = r.matchStage(ctx); err != nil {
			return fmt.Errorf("match stage: %w", err)
		}
		if summary.Enrich, err = r.enrichStage(ctx); err != nil {
			return fmt.Errorf("enrich stage: %w", err)
		}
		if summary.Export, err = r.exportStage(ctx); err != nil {
			return fmt.Errorf("export stage: %w", err)
		}
		r.logger.Info("pipeline run complete")
		return nil
	})
	return summary, err
}

func (r *Runner) newTMDBClient() (*tmdb.Client, error) {
	return tmdb.NewClient(r.cfg.TMDB, r.logger)
}

package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"anidex/internal/catalog"
	"anidex/internal/logging"
)

//go:embed anime.schema.json
var animeSchemaJSON []byte

// Published dataset file names under the final/ and indexes/ directories.
const (
	EnrichedFile   = "enriched.json"
	NoTMDBFile     = "no_tmdb.json"
	NotMatchedFile = "not_matched.json"
	ByAnilistFile  = "by_anilist_id.json"
	ByTMDBFile     = "by_tmdb_id.json"
)

// Summary reports what one export pass wrote.
type Summary struct {
	Enriched   int
	NoTMDB     int
	NotMatched int
}

// Exporter validates and writes the published datasets.
type Exporter struct {
	schema *jsonschema.Schema
	logger *slog.Logger
}

// NewExporter compiles the embedded record schema.
func NewExporter(logger *slog.Logger) (*Exporter, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(animeSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse embedded schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("anime.schema.json", doc); err != nil {
		return nil, fmt.Errorf("register schema: %w", err)
	}
	schema, err := compiler.Compile("anime.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Exporter{
		schema: schema,
		logger: logging.NewComponentLogger(logger, "export"),
	}, nil
}

// Run partitions items by match outcome, validates every enriched record,
// and writes the datasets under finalDir and the lookup tables under
// indexDir. The first invalid record aborts the export before anything is
// written.
func (e *Exporter) Run(items []*catalog.Anime, finalDir, indexDir string) (Summary, error) {
	var summary Summary
	var enriched, noTMDB, notMatched []*catalog.Anime

	for _, item := range items {
		published := stripTransient(item)
		switch {
		case item.Match.Status == catalog.StatusMatched && item.TMDB != nil:
			enriched = append(enriched, published)
		case item.Match.Status == catalog.StatusMatched:
			noTMDB = append(noTMDB, published)
		default:
			notMatched = append(notMatched, published)
		}
	}

	for _, item := range enriched {
		if err := e.validate(item); err != nil {
			return summary, fmt.Errorf("record anilist_id=%d failed validation: %w", item.AnilistID, err)
		}
	}

	byAnilist := make(map[string]int, len(enriched))
	byTMDB := make(map[string]int, len(enriched))
	for i, item := range enriched {
		byAnilist[strconv.FormatInt(item.AnilistID, 10)] = i
		byTMDB[strconv.FormatInt(item.TMDBID, 10)] = i
	}

	datasets := []struct {
		path  string
		items []*catalog.Anime
	}{
		{filepath.Join(finalDir, EnrichedFile), enriched},
		{filepath.Join(finalDir, NoTMDBFile), noTMDB},
		{filepath.Join(finalDir, NotMatchedFile), notMatched},
	}
	for _, dataset := range datasets {
		if err := catalog.SaveDataset(dataset.path, dataset.items); err != nil {
			return summary, err
		}
	}
	if err := catalog.SaveJSON(filepath.Join(indexDir, ByAnilistFile), byAnilist); err != nil {
		return summary, err
	}
	if err := catalog.SaveJSON(filepath.Join(indexDir, ByTMDBFile), byTMDB); err != nil {
		return summary, err
	}

	summary = Summary{
		Enriched:   len(enriched),
		NoTMDB:     len(noTMDB),
		NotMatched: len(notMatched),
	}
	e.logger.Info("export complete",
		logging.Int("enriched", summary.Enriched),
		logging.Int("no_tmdb", summary.NoTMDB),
		logging.Int("not_matched", summary.NotMatched))
	return summary, nil
}

// validate round-trips the record through JSON so the schema sees exactly
// what readers of the published files will see.
func (e *Exporter) validate(item *catalog.Anime) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("reparse record: %w", err)
	}
	return e.schema.Validate(instance)
}

// stripTransient copies the item without its working normalized titles.
func stripTransient(item *catalog.Anime) *catalog.Anime {
	published := *item
	published.Normalized = catalog.NormalizedTitleSet{}
	return &published
}

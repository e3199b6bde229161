package enrich

import (
	"context"
	"path/filepath"
	"testing"

	"anidex/internal/catalog"
)

func sampleEnrichment(id int64) *catalog.Enrichment {
	return &catalog.Enrichment{
		TMDB: &catalog.TMDBInfo{
			ID:        id,
			MediaType: catalog.MediaTypeTV,
			Year:      2013,
			Genres:    []string{"Animation"},
		},
		Fallback: &catalog.LocalizedInfo{
			Language: "en-US",
			Title:    "Attack on Titan",
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "nested", "enrich.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	_, ok, err := store.Get(ctx, catalog.MediaTypeTV, 1429)
	if err != nil {
		t.Fatalf("Get on empty store: %v", err)
	}
	if ok {
		t.Fatal("empty store should miss")
	}

	if err := store.Put(ctx, catalog.MediaTypeTV, 1429, sampleEnrichment(1429)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get(ctx, catalog.MediaTypeTV, 1429)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.TMDB.ID != 1429 || got.Fallback.Title != "Attack on Titan" {
		t.Errorf("payload = %+v", got)
	}

	// Same id under a different media type is a distinct row.
	_, ok, err = store.Get(ctx, catalog.MediaTypeMovie, 1429)
	if err != nil {
		t.Fatalf("Get other media type: %v", err)
	}
	if ok {
		t.Error("movie row should not exist")
	}
}

func TestStorePutReplaces(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "enrich.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Put(ctx, catalog.MediaTypeMovie, 95, sampleEnrichment(95)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	updated := sampleEnrichment(95)
	updated.Fallback.Title = "Akira"
	if err := store.Put(ctx, catalog.MediaTypeMovie, 95, updated); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	got, _, err := store.Get(ctx, catalog.MediaTypeMovie, 95)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Fallback.Title != "Akira" {
		t.Errorf("title = %q, want replaced value", got.Fallback.Title)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after replace", count)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enrich.db")
	ctx := context.Background()

	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if err := store.Put(ctx, catalog.MediaTypeTV, 1429, sampleEnrichment(1429)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	_, ok, err := reopened.Get(ctx, catalog.MediaTypeTV, 1429)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !ok {
		t.Error("row should survive reopen")
	}
}

package enrich

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"anidex/internal/catalog"
	"anidex/internal/logging"
)

type fakeClient struct {
	calls int
	fail  map[int64]error
}

func (f *fakeClient) Enrich(ctx context.Context, mediaType catalog.MediaType, tmdbID int64, localizedLang, fallbackLang string) (*catalog.Enrichment, error) {
	f.calls++
	if err := f.fail[tmdbID]; err != nil {
		return nil, err
	}
	return sampleEnrichment(tmdbID), nil
}

func matchedItem(anilistID, tmdbID int64) *catalog.Anime {
	item := &catalog.Anime{AnilistID: anilistID}
	item.ApplyMatch(catalog.Matched(tmdbID, catalog.MediaTypeTV, catalog.MethodTitleSimilarity, 0.9))
	return item
}

func TestEnrichAllAttachesPayloads(t *testing.T) {
	client := &fakeClient{}
	enricher := NewEnricher(client, nil, logging.NewNop(), WithDelay(0))

	unmatched := &catalog.Anime{AnilistID: 2}
	unmatched.ApplyMatch(catalog.NotFound())
	items := []*catalog.Anime{matchedItem(1, 1429), unmatched}

	summary, err := enricher.EnrichAll(context.Background(), items)
	if err != nil {
		t.Fatalf("EnrichAll: %v", err)
	}
	if summary.Enriched != 1 || summary.Skipped != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if items[0].TMDB == nil || items[0].TMDB.ID != 1429 {
		t.Errorf("matched item enrichment = %+v", items[0].TMDB)
	}
	if items[1].TMDB != nil {
		t.Error("unmatched item must carry explicit nulls")
	}
}

func TestEnrichAllContinuesPastFailures(t *testing.T) {
	client := &fakeClient{fail: map[int64]error{7: errors.New("boom")}}
	enricher := NewEnricher(client, nil, logging.NewNop(), WithDelay(0))

	items := []*catalog.Anime{matchedItem(1, 7), matchedItem(2, 1429)}
	summary, err := enricher.EnrichAll(context.Background(), items)
	if err != nil {
		t.Fatalf("EnrichAll: %v", err)
	}
	if summary.Failed != 1 || summary.Enriched != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if items[0].TMDB != nil {
		t.Error("failed item must carry explicit nulls")
	}
	if items[1].TMDB == nil {
		t.Error("later item should still be enriched")
	}
}

func TestEnrichAllUsesCacheAcrossItems(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "enrich.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()
	cache, err := NewCache(8, store)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	client := &fakeClient{}
	enricher := NewEnricher(client, cache, logging.NewNop(), WithDelay(0))

	// Two items matched to the same TMDB record.
	items := []*catalog.Anime{matchedItem(1, 1429), matchedItem(2, 1429)}
	summary, err := enricher.EnrichAll(context.Background(), items)
	if err != nil {
		t.Fatalf("EnrichAll: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("client saw %d calls, want 1 (second item from cache)", client.calls)
	}
	if summary.CacheHits != 1 {
		t.Errorf("cache hits = %d, want 1", summary.CacheHits)
	}

	// A fresh enricher over the same store must not call the API at all.
	freshCache, err := NewCache(8, store)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	rerunClient := &fakeClient{}
	rerun := NewEnricher(rerunClient, freshCache, logging.NewNop(), WithDelay(0))
	if _, err := rerun.EnrichAll(context.Background(), []*catalog.Anime{matchedItem(3, 1429)}); err != nil {
		t.Fatalf("rerun EnrichAll: %v", err)
	}
	if rerunClient.calls != 0 {
		t.Errorf("rerun client saw %d calls, want 0", rerunClient.calls)
	}
}

func TestEnrichAllStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{}
	enricher := NewEnricher(client, nil, logging.NewNop(), WithDelay(0))
	_, err := enricher.EnrichAll(ctx, []*catalog.Anime{matchedItem(1, 1429)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if client.calls != 0 {
		t.Errorf("client saw %d calls after cancellation", client.calls)
	}
}

package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"anidex/internal/catalog"
)

func tvDetails(language string) map[string]any {
	base := map[string]any{
		"id":                1429,
		"name":              "Attack on Titan",
		"original_name":     "進撃の巨人",
		"original_language": "ja",
		"overview":          "Humanity fights for survival.",
		"poster_path":       "/poster.jpg",
		"backdrop_path":     "/backdrop.jpg",
		"first_air_date":    "2013-04-07",
		"vote_average":      8.7,
		"vote_count":        12000,
		"popularity":        150.5,
		"status":            "Ended",
		"genres":            []map[string]any{{"name": "Animation"}, {"name": "Action"}},
	}
	if language == "pt-BR" {
		base["name"] = "Ataque dos Titãs"
		base["overview"] = "A humanidade luta pela sobrevivência."
		base["poster_path"] = "/poster-pt.jpg"
	}
	return base
}

func enrichServer(t *testing.T, localizedOverview bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/1429":
			language := r.URL.Query().Get("language")
			details := tvDetails(language)
			if language == "pt-BR" && !localizedOverview {
				details["overview"] = ""
			}
			json.NewEncoder(w).Encode(details)
		case "/tv/1429/videos":
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{"site": "YouTube", "type": "Teaser", "key": "teaser", "official": true},
					{"site": "YouTube", "type": "Trailer", "key": "unofficial", "official": false},
					{"site": "YouTube", "type": "Trailer", "key": "official-key", "official": true},
				},
			})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestEnrichBuildsAllViews(t *testing.T) {
	server := enrichServer(t, true)
	defer server.Close()

	enrichment, err := testClient(t, server.URL).Enrich(context.Background(), catalog.MediaTypeTV, 1429, "pt-BR", "en-US")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	info := enrichment.TMDB
	if info == nil {
		t.Fatal("missing tmdb info")
	}
	if info.ID != 1429 || info.MediaType != catalog.MediaTypeTV {
		t.Errorf("info identity = %d/%s", info.ID, info.MediaType)
	}
	if info.Year != 2013 {
		t.Errorf("year = %d, want 2013", info.Year)
	}
	if info.OriginalName != "進撃の巨人" || info.OriginalLanguage != "ja" {
		t.Errorf("original fields = %q/%q", info.OriginalName, info.OriginalLanguage)
	}
	if len(info.Genres) != 2 || info.Genres[0] != "Animation" {
		t.Errorf("genres = %v", info.Genres)
	}
	if info.Trailer != "https://www.youtube.com/watch?v=official-key" {
		t.Errorf("trailer = %q, want official youtube trailer", info.Trailer)
	}

	if enrichment.Fallback == nil || enrichment.Fallback.Language != "en-US" {
		t.Fatalf("fallback = %+v", enrichment.Fallback)
	}
	if enrichment.Fallback.Poster != "https://image.tmdb.org/t/p/w500/poster.jpg" {
		t.Errorf("poster = %q", enrichment.Fallback.Poster)
	}
	if enrichment.Fallback.Backdrop != "https://image.tmdb.org/t/p/w780/backdrop.jpg" {
		t.Errorf("backdrop = %q", enrichment.Fallback.Backdrop)
	}

	if enrichment.Localized == nil {
		t.Fatal("expected localized view when overview is present")
	}
	if enrichment.Localized.Title != "Ataque dos Titãs" || enrichment.Localized.Language != "pt-BR" {
		t.Errorf("localized = %+v", enrichment.Localized)
	}
}

func TestEnrichSkipsLocalizedWithoutOverview(t *testing.T) {
	server := enrichServer(t, false)
	defer server.Close()

	enrichment, err := testClient(t, server.URL).Enrich(context.Background(), catalog.MediaTypeTV, 1429, "pt-BR", "en-US")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if enrichment.Localized != nil {
		t.Errorf("localized view should be dropped without an overview, got %+v", enrichment.Localized)
	}
	if enrichment.Fallback == nil {
		t.Error("fallback view must always be present")
	}
}

func TestEnrichSurvivesTrailerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/95":
			json.NewEncoder(w).Encode(map[string]any{
				"id":           95,
				"title":        "Akira",
				"release_date": "1988-07-16",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	enrichment, err := testClient(t, server.URL).Enrich(context.Background(), catalog.MediaTypeMovie, 95, "", "en-US")
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if enrichment.TMDB.Trailer != "" {
		t.Errorf("trailer = %q, want empty on lookup failure", enrichment.TMDB.Trailer)
	}
	if enrichment.TMDB.Year != 1988 {
		t.Errorf("year = %d, want 1988", enrichment.TMDB.Year)
	}
}

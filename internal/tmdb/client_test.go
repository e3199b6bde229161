package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"anidex/internal/config"
	"anidex/internal/logging"
)

func testClient(t *testing.T, serverURL string, tokens ...string) *Client {
	t.Helper()
	if len(tokens) == 0 {
		tokens = []string{"token-a"}
	}
	client, err := NewClient(config.TMDB{
		BaseURL:      serverURL,
		ImageBaseURL: "https://image.tmdb.org/t/p/",
		Tokens:       tokens,
		Language:     "en-US",
		TimeoutSecs:  5,
		MaxRetries:   2,
	}, logging.NewNop(), WithRetryBackoff(time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(config.TMDB{Tokens: []string{"  "}}, logging.NewNop())
	if err == nil {
		t.Error("expected error for empty token list")
	}
}

func TestSearchMapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/multi" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "attack on titan" {
			t.Errorf("query = %q", got)
		}
		if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
			t.Errorf("missing bearer auth, got %q", auth)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": 1429, "media_type": "tv", "name": "Attack on Titan"},
				{"id": 12345, "media_type": "movie", "title": "Attack on Titan: Part 1"},
				{"id": 99, "media_type": "person", "name": "Some Actor"},
			},
		})
	}))
	defer server.Close()

	results, err := testClient(t, server.URL).Search(context.Background(), "attack on titan")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].ID != 1429 || results[0].MediaType != "tv" || results[0].Title != "Attack on Titan" {
		t.Errorf("tv result = %+v", results[0])
	}
	if results[1].Title != "Attack on Titan: Part 1" {
		t.Errorf("movie result should take title field, got %+v", results[1])
	}
}

func TestTokenRotation(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	client := testClient(t, server.URL, "one", "two")
	for range 3 {
		if _, err := client.Search(context.Background(), "x"); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}

	want := []string{"Bearer one", "Bearer two", "Bearer one"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("request %d used %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	if _, err := testClient(t, server.URL).Search(context.Background(), "x"); err != nil {
		t.Fatalf("Search after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := testClient(t, server.URL).Search(context.Background(), "x"); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on 4xx)", calls)
	}
}

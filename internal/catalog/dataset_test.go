package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDatasetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processed", "animes_matched.json")

	items := []*Anime{
		{
			AnilistID: 16498,
			Titles:    TitleSet{English: "Attack on Titan", Romaji: "Shingeki no Kyojin"},
			Match:     Matched(1429, MediaTypeTV, MethodTitleSimilarityFast, 1.0),
		},
		{
			AnilistID: 101,
			Titles:    TitleSet{Romaji: "Mousou Dairinin"},
			Match:     NotFound(),
		},
	}

	if err := SaveDataset(path, items); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	loaded, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d items, want 2", len(loaded))
	}
	if loaded[0].AnilistID != 16498 || loaded[0].Match.Status != StatusMatched {
		t.Errorf("first item = %+v, want matched 16498", loaded[0])
	}
	if loaded[1].Match.Status != StatusNotFound {
		t.Errorf("second item status = %v, want NOT_FOUND", loaded[1].Match.Status)
	}
}

func TestLoadDatasetMissing(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrDatasetMissing) {
		t.Errorf("err = %v, want ErrDatasetMissing", err)
	}
}

func TestSaveDatasetLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.json")

	if err := SaveDataset(path, []*Anime{{AnilistID: 1}}); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away after save")
	}
}

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrDatasetMissing indicates a stage was asked to read a dataset that has
// not been produced yet.
var ErrDatasetMissing = errors.New("dataset not found")

// LoadDataset reads a JSON array of catalog items from path.
func LoadDataset(path string) ([]*Anime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, path)
		}
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var items []*Anime
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return items, nil
}

// SaveDataset writes items to path atomically, creating parent directories
// as needed. The temp-then-rename dance keeps readers from ever observing a
// half-written dataset.
func SaveDataset(path string, items []*Anime) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	return writeFileAtomic(path, data)
}

// SaveJSON writes an arbitrary value as indented JSON using the same atomic
// write rules as SaveDataset. The export stage uses it for index files.
func SaveJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

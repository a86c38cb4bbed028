package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scenescout/internal/types"
)

// Store manages the per-video JSON metadata files in a single directory.
type Store struct {
	dir string
}

// New returns a store rooted at the given metadata directory.
// The directory is created lazily on the first Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the metadata directory this store operates on.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the metadata file path for a video name.
func (s *Store) Path(videoName string) string {
	return filepath.Join(s.dir, videoName+".json")
}

// Save writes the records for one video as a pretty-printed JSON array.
// An empty record list still produces a valid file containing [].
func (s *Store) Save(videoName string, records []types.Record) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}
	if records == nil {
		records = []types.Record{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.Path(videoName), data, 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Load reads the records for one video back from disk.
func (s *Store) Load(videoName string) ([]types.Record, error) {
	data, err := os.ReadFile(s.Path(videoName))
	if err != nil {
		return nil, err
	}
	var records []types.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", s.Path(videoName), err)
	}
	return records, nil
}

// Search scans every metadata file in the directory and returns the records
// whose object label contains the query as a case-insensitive substring.
// Each invocation re-reads all files; there is no index or cache. Files that
// cannot be read or parsed are skipped with a warning on stderr so that one
// bad file never hides matches in the others.
func (s *Store) Search(query string) ([]types.Result, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read metadata directory: %w", err)
	}

	needle := strings.ToLower(query)
	results := []types.Result{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		videoName := strings.TrimSuffix(entry.Name(), ".json")
		records, err := s.Load(videoName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", entry.Name(), err)
			continue
		}
		for _, rec := range records {
			if strings.Contains(strings.ToLower(rec.Object), needle) {
				results = append(results, types.Result{Video: videoName, Record: rec})
			}
		}
	}
	return results, nil
}

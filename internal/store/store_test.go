package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenescout/internal/types"
)

func sampleRecords() []types.Record {
	return []types.Record{
		{Timestamp: 3.0, Object: "person", BBox: [4]float64{10, 10, 50, 50}, Confidence: 0.91},
		{Timestamp: 4.5, Object: "Car", BBox: [4]float64{100, 20, 300, 200}, Confidence: 0.77},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	want := sampleRecords()

	if err := s.Save("drive1", want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := s.Load("drive1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Record %d mismatch: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSavePrettyPrintsEmptyList(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Save("empty", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(s.Path("empty"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "[]" {
		t.Errorf("Expected empty JSON array, got %q", got)
	}
}

func TestSaveIsIndented(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Save("drive1", sampleRecords()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(s.Path("drive1"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n    \"timestamp\"") {
		t.Errorf("Expected pretty-printed output, got:\n%s", data)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Save("drive1", sampleRecords()); err != nil {
		t.Fatal(err)
	}

	for _, query := range []string{"car", "CAR", "Car"} {
		results, err := s.Search(query)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", query, err)
		}
		if len(results) != 1 {
			t.Fatalf("Search(%q): expected 1 result, got %d", query, len(results))
		}
		if results[0].Object != "Car" {
			t.Errorf("Search(%q): expected label Car, got %q", query, results[0].Object)
		}
	}
}

func TestSearchSubstring(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Save("drive1", sampleRecords()); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search("per")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Object != "person" {
		t.Fatalf("Expected a single person match, got %+v", results)
	}

	results, err = s.Search("bicycle")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no matches for bicycle, got %+v", results)
	}
}

func TestSearchMultiFileAttribution(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Save("drive1", []types.Record{
		{Timestamp: 1.0, Object: "person", BBox: [4]float64{1, 2, 3, 4}, Confidence: 0.9},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("drive2", []types.Record{
		{Timestamp: 7.0, Object: "person", BBox: [4]float64{5, 6, 7, 8}, Confidence: 0.8},
		{Timestamp: 8.0, Object: "dog", BBox: [4]float64{0, 0, 9, 9}, Confidence: 0.6},
	}); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search("person")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected the union of matches (2), got %d", len(results))
	}

	videos := map[string]float64{}
	for _, res := range results {
		videos[res.Video] = res.Timestamp
	}
	if videos["drive1"] != 1.0 || videos["drive2"] != 7.0 {
		t.Errorf("Wrong per-record video attribution: %+v", videos)
	}
}

func TestSearchSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Save("good", sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search("person")
	if err != nil {
		t.Fatalf("Search should skip corrupt files, got error: %v", err)
	}
	if len(results) != 1 || results[0].Video != "good" {
		t.Errorf("Expected the match from the good file only, got %+v", results)
	}
}

func TestSearchIgnoresNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Save("drive1", sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("person"), 0644); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search("person")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestSearchMissingDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope"))
	if _, err := s.Search("person"); err == nil {
		t.Error("Expected an error for a missing metadata directory")
	}
}

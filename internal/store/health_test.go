package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakuvilla/hostmerge/internal/blocklist"
	"github.com/wakuvilla/hostmerge/internal/store"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := store.NewHealthStore(filepath.Join(t.TempDir(), "tracker.json"), nil)
	assert.Empty(t, s.Load())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.json")
	s := store.NewHealthStore(path, nil)

	records := map[string]blocklist.HealthRecord{
		"https://lists.example.com/a.txt": {ConsecutiveErrors: 2},
		"https://lists.example.com/b.txt": {ConsecutiveErrors: 3, SkipUntil: "2026-10-29"},
	}
	require.NoError(t, s.Save(records))

	loaded := s.Load()
	assert.Equal(t, records, loaded)
}

func TestLoadCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := store.NewHealthStore(path, nil)
	assert.Empty(t, s.Load())
}

func TestLoadCorruptRecordDoesNotPoisonOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.json")
	content := `{
  "https://lists.example.com/good.txt": {"consecutive_errors": 1},
  "https://lists.example.com/bad.txt": ["not", "an", "object"]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s := store.NewHealthStore(path, nil)
	records := s.Load()

	assert.Equal(t, 1, records["https://lists.example.com/good.txt"].ConsecutiveErrors)
	assert.Equal(t, blocklist.HealthRecord{}, records["https://lists.example.com/bad.txt"])
}

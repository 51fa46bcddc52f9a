package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "counts_history.csv")
	s := NewCSVStore(path, nil)

	entries := []Entry{
		{Date: day("2026-08-28"), Value: 120000},
		{Date: day("2026-08-29"), Value: 121500},
	}
	require.NoError(t, s.Save(ctx, entries))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)
}

func TestCSVStoreMissingFile(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "missing.csv"), nil)
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCSVStoreSkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts_history.csv")
	content := "date,unique_domains\n" +
		"2026-08-27,100\n" +
		"yesterday,200\n" +
		"2026-08-28,many\n" +
		"2026-08-29,300\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s := NewCSVStore(path, nil)
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 100, loaded[0].Value)
	assert.Equal(t, 300, loaded[1].Value)
}

func TestCSVStoreLegacyHeaderLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip_counts_history.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("date,unique_ips\n2026-08-29,4096\n"), 0o600))

	s := NewCSVStore(path, nil)
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 4096, loaded[0].Value)
}

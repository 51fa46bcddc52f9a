package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakuvilla/hostmerge/internal/api"
	"github.com/wakuvilla/hostmerge/internal/blocklist"
	"github.com/wakuvilla/hostmerge/internal/history"
)

type stubHistory struct {
	entries []history.Entry
	err     error
}

func (s stubHistory) Load(context.Context) ([]history.Entry, error) { return s.entries, s.err }
func (s stubHistory) Save(context.Context, []history.Entry) error   { return nil }

type stubHealth struct {
	records map[string]blocklist.HealthRecord
}

func (s stubHealth) Load() map[string]blocklist.HealthRecord { return s.records }

func newTestServer(t *testing.T, h stubHistory, records map[string]blocklist.HealthRecord) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(api.NewServer(h, stubHealth{records: records}, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, stubHistory{}, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetHistory(t *testing.T) {
	srv := newTestServer(t, stubHistory{entries: []history.Entry{
		{Date: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), Value: 120000},
	}}, nil)

	resp, err := http.Get(srv.URL + "/v1/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []struct {
		Date  string `json:"date"`
		Value int    `json:"value"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-08-29", rows[0].Date)
	assert.Equal(t, 120000, rows[0].Value)
}

func TestGetHistoryEmptyIsEmptyArray(t *testing.T) {
	srv := newTestServer(t, stubHistory{}, nil)

	resp, err := http.Get(srv.URL + "/v1/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	var rows []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	assert.Empty(t, rows)
}

func TestGetSources(t *testing.T) {
	srv := newTestServer(t, stubHistory{}, map[string]blocklist.HealthRecord{
		"https://lists.example.com/a.txt": {ConsecutiveErrors: 3, SkipUntil: "2026-10-29"},
	})

	resp, err := http.Get(srv.URL + "/v1/sources")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records map[string]blocklist.HealthRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	assert.Equal(t, 3, records["https://lists.example.com/a.txt"].ConsecutiveErrors)
}

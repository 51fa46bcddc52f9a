package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUpsertOverwritesSameDate(t *testing.T) {
	s := NewSeries(nil, 30)
	s.Upsert(day("2026-08-29"), 100)
	s.Upsert(day("2026-08-29"), 250)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 250, entries[0].Value)
}

func TestUpsertKeepsAscendingOrder(t *testing.T) {
	s := NewSeries(nil, 30)
	s.Upsert(day("2026-08-29"), 2)
	s.Upsert(day("2026-08-27"), 1)
	s.Upsert(day("2026-08-30"), 3)

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, day("2026-08-27"), entries[0].Date)
	assert.Equal(t, day("2026-08-30"), entries[2].Date)
}

func TestRetentionTrimsOldest(t *testing.T) {
	const retention = 5
	s := NewSeries(nil, retention)
	start := day("2026-08-01")
	for i := 0; i < retention+1; i++ {
		s.Upsert(start.AddDate(0, 0, i), i)
	}

	entries := s.Entries()
	require.Len(t, entries, retention)
	assert.Equal(t, day("2026-08-02"), entries[0].Date, "oldest entry is excluded")
	assert.Equal(t, day("2026-08-06"), entries[len(entries)-1].Date)
}

func TestNewSeriesNormalizesInput(t *testing.T) {
	entries := []Entry{
		{Date: day("2026-08-03"), Value: 3},
		{Date: day("2026-08-01"), Value: 1},
		{Date: day("2026-08-01"), Value: 10},
	}
	s := NewSeries(entries, 30)

	got := s.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, 10, got[0].Value, "later write for the same date wins")
}

func TestUpsertTruncatesToDay(t *testing.T) {
	s := NewSeries(nil, 30)
	s.Upsert(time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC), 1)
	s.Upsert(time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC), 2)
	require.Equal(t, 1, s.Len())
}

func TestLargeBackfill(t *testing.T) {
	s := NewSeries(nil, 60)
	start := day("2026-01-01")
	for i := 0; i < 200; i++ {
		s.Upsert(start.AddDate(0, 0, i), i)
	}
	require.Equal(t, 60, s.Len())
	entries := s.Entries()
	for i := 1; i < len(entries); i++ {
		require.True(t, entries[i-1].Date.Before(entries[i].Date),
			fmt.Sprintf("entries out of order at %d", i))
	}
}

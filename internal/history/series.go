// Package history keeps the day-keyed log of unique entry counts with a
// fixed retention window.
package history

import (
	"sort"
	"time"
)

// DateLayout is the calendar format used in persisted history rows.
const DateLayout = "2006-01-02"

// Entry is one day's count.
type Entry struct {
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}

// Series is an in-memory history ordered by date ascending, unique by date,
// holding at most `retention` entries.
type Series struct {
	entries   []Entry
	retention int
}

// NewSeries builds a Series from persisted entries, normalizing order and
// applying the retention window.
func NewSeries(entries []Entry, retention int) *Series {
	s := &Series{retention: retention}
	for _, e := range entries {
		s.Upsert(e.Date, e.Value)
	}
	return s
}

// Upsert sets the value for a date. A later write for the same date
// overwrites; a new date appends and trims the oldest entries beyond the
// retention window.
func (s *Series) Upsert(date time.Time, value int) {
	day := truncate(date)
	for i, e := range s.entries {
		if e.Date.Equal(day) {
			s.entries[i].Value = value
			return
		}
	}
	s.entries = append(s.entries, Entry{Date: day, Value: value})
	sort.Slice(s.entries, func(i, j int) bool {
		return s.entries[i].Date.Before(s.entries[j].Date)
	})
	if s.retention > 0 && len(s.entries) > s.retention {
		s.entries = s.entries[len(s.entries)-s.retention:]
	}
}

// Entries returns a copy of the series in date-ascending order.
func (s *Series) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of retained entries.
func (s *Series) Len() int {
	return len(s.entries)
}

func truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

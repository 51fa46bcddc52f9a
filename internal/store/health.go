// Package store persists per-source health records between runs.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wakuvilla/hostmerge/internal/blocklist"
)

// HealthStore reads and writes the URL-keyed health record file. The file
// is ad-hoc JSON, kept compatible with earlier deployments; corruption is
// never fatal: a broken file loads as empty, a broken record as default.
type HealthStore struct {
	path   string
	logger *zap.Logger
}

// NewHealthStore creates a store over the given file path.
func NewHealthStore(path string, logger *zap.Logger) *HealthStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthStore{path: path, logger: logger}
}

// Load reads the persisted records. Absent or unreadable files yield an
// empty map; a record that does not decode yields the default record for
// that URL without failing the rest of the store.
func (s *HealthStore) Load() map[string]blocklist.HealthRecord {
	records := make(map[string]blocklist.HealthRecord)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot read health state, starting empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return records
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("corrupt health state, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return records
	}

	for url, msg := range raw {
		var rec blocklist.HealthRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			s.logger.Warn("corrupt health record, using default",
				zap.String("url", url), zap.Error(err))
			rec = blocklist.HealthRecord{}
		}
		if rec.ConsecutiveErrors < 0 {
			rec.ConsecutiveErrors = 0
		}
		records[url] = rec
	}
	return records
}

// Save writes the records back, replacing the file atomically.
func (s *HealthStore) Save(records map[string]blocklist.HealthRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal health state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write health state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace health state: %w", err)
	}
	return nil
}

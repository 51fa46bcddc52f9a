package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Store persists a history series between runs.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// CSVStore keeps the history in a two-column CSV file, header `date,value`.
// Legacy files with other value column names (unique_domains, unique_ips)
// load the same way since only column position matters.
type CSVStore struct {
	path   string
	logger *zap.Logger
}

// NewCSVStore creates a store over the given file path.
func NewCSVStore(path string, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{path: path, logger: logger}
}

// Load reads the persisted rows. A missing file yields an empty series;
// malformed rows are skipped, not fatal.
func (s *CSVStore) Load(_ context.Context) ([]Entry, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		s.logger.Warn("corrupt history file, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}

	var entries []Entry
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue // header or short row
		}
		date, err := time.ParseInLocation(DateLayout, row[0], time.UTC)
		if err != nil {
			s.logger.Warn("skipping malformed history row",
				zap.Int("line", i+1), zap.String("date", row[0]))
			continue
		}
		value, err := strconv.Atoi(row[1])
		if err != nil || value < 0 {
			s.logger.Warn("skipping malformed history row",
				zap.Int("line", i+1), zap.String("value", row[1]))
			continue
		}
		entries = append(entries, Entry{Date: date, Value: value})
	}
	return entries, nil
}

// Save rewrites the CSV with the given entries.
func (s *CSVStore) Save(_ context.Context, entries []Entry) error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create history %s: %w", s.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"date", "value"}); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}
	for _, e := range entries {
		row := []string{e.Date.Format(DateLayout), strconv.Itoa(e.Value)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write history row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush history: %w", err)
	}
	return nil
}

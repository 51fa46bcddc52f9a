// Package sources maintains the newline-delimited list of block-list URLs.
package sources

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wakuvilla/hostmerge/internal/blocklist"
)

// Manager refreshes the source list from its upstream index and loads the
// URLs for a run.
type Manager struct {
	file           string
	indexURL       string
	additionalFile string
	fetcher        blocklist.Fetcher
	logger         *zap.Logger
}

// NewManager wires a source-list manager. indexURL may be empty, in which
// case Refresh leaves the existing file untouched.
func NewManager(file, indexURL, additionalFile string, fetcher blocklist.Fetcher, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		file:           file,
		indexURL:       indexURL,
		additionalFile: additionalFile,
		fetcher:        fetcher,
		logger:         logger,
	}
}

// Refresh replaces the source file with the upstream index content, then
// appends the non-comment lines of the additional file when present.
// A refresh failure is a configuration-level failure: the run must abort.
func (m *Manager) Refresh(ctx context.Context) error {
	if m.indexURL == "" {
		return nil
	}

	res := m.fetcher.Fetch(ctx, m.indexURL)
	if !res.Success() {
		return fmt.Errorf("refresh source list from %s: %w", m.indexURL, res.Err)
	}

	content := res.Text
	if extra := m.loadAdditional(); len(extra) > 0 {
		content = strings.TrimRight(content, "\n") + "\n\n" + strings.Join(extra, "\n") + "\n"
		m.logger.Info("appended additional sources",
			zap.String("file", m.additionalFile),
			zap.Int("count", len(extra)),
		)
	}

	if err := os.WriteFile(m.file, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write source list %s: %w", m.file, err)
	}
	m.logger.Info("source list refreshed",
		zap.String("file", m.file),
		zap.String("index_url", m.indexURL),
	)
	return nil
}

func (m *Manager) loadAdditional() []string {
	if m.additionalFile == "" {
		return nil
	}
	file, err := os.Open(m.additionalFile)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("cannot read additional sources", zap.Error(err))
		}
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		m.logger.Warn("scan additional sources", zap.Error(err))
	}
	return lines
}

// Load reads the source file and returns its URLs in order, skipping blank
// lines and comments. A missing file is a fatal input failure.
func (m *Manager) Load() ([]string, error) {
	file, err := os.Open(m.file)
	if err != nil {
		return nil, fmt.Errorf("open source list %s: %w", m.file, err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source list %s: %w", m.file, err)
	}
	return urls, nil
}

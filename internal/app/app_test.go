package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakuvilla/hostmerge/internal/app"
	"github.com/wakuvilla/hostmerge/internal/config"
)

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Sources: config.SourcesConfig{File: filepath.Join(dir, "sources.txt")},
		Fetch:   config.FetchConfig{Concurrency: 2, TimeoutSeconds: 5},
		Health: config.HealthConfig{
			StatePath:    filepath.Join(dir, "tracker.json"),
			Threshold:    3,
			CooldownDays: 60,
		},
		History: config.HistoryConfig{
			Backend:   "csv",
			Retention: 30,
			CSVPath:   filepath.Join(dir, "history.csv"),
		},
		Output: config.OutputConfig{
			Mode:     config.ModeDomains,
			Path:     filepath.Join(dir, "unified_hosts.txt"),
			Provider: "noop",
		},
		Notify: config.NotifyConfig{Provider: "noop"},
		Server: config.ServerConfig{Port: 8080},
	}
}

func TestNewAppWithNoopProviders(t *testing.T) {
	a, err := app.NewApp(context.Background(), baseConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Notifier())
	assert.NotNil(t, a.Output())
	assert.NotNil(t, a.HistoryStore())
	assert.NotNil(t, a.HealthStore())
}

func TestNewAppUnknownProviders(t *testing.T) {
	t.Run("Notify", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.Notify.Provider = "smoke-signals"
		_, err := app.NewApp(context.Background(), cfg)
		assert.Error(t, err)
	})
	t.Run("Output", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.Output.Provider = "ftp"
		_, err := app.NewApp(context.Background(), cfg)
		assert.Error(t, err)
	})
	t.Run("History", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.History.Backend = "sqlite"
		_, err := app.NewApp(context.Background(), cfg)
		assert.Error(t, err)
	})
}

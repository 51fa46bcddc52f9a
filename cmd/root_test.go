package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wakuvilla/hostmerge/internal/config"
	"github.com/wakuvilla/hostmerge/internal/history"
	"github.com/wakuvilla/hostmerge/internal/notify"
	"github.com/wakuvilla/hostmerge/internal/storage"
	"github.com/wakuvilla/hostmerge/internal/store"
)

// mockApp satisfies the App interface without touching any external
// service, so the command wiring can be tested end to end.
type mockApp struct {
	cfg    config.Config
	closed bool
}

func (m *mockApp) Close()                       { m.closed = true }
func (m *mockApp) Config() config.Config        { return m.cfg }
func (m *mockApp) Logger() *zap.Logger          { return zap.NewNop() }
func (m *mockApp) Notifier() notify.Notifier    { return notify.NoopNotifier{} }
func (m *mockApp) Output() storage.Provider     { return storage.NewLocalProvider() }
func (m *mockApp) HistoryStore() history.Store  { return history.NewCSVStore(m.cfg.History.CSVPath, nil) }
func (m *mockApp) HealthStore() *store.HealthStore {
	return store.NewHealthStore(m.cfg.Health.StatePath, nil)
}

func TestRootCommandRunsAggregateAndClosesApp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "0.0.0.0 ads.example.com\n")
	}))
	defer server.Close()

	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Sources.File, []byte(server.URL+"\n"), 0o644))

	mock := &mockApp{cfg: cfg}
	original := newApp
	newApp = func(context.Context, config.Config) (App, error) { return mock, nil }
	defer func() { newApp = original }()

	root := newRootCmd()
	root.SetArgs([]string{"aggregate", "--refresh-sources=false"})
	require.NoError(t, root.Execute())

	assert.True(t, mock.closed, "app must be closed after the command finishes")
	_, err := os.Stat(cfg.Output.Path)
	assert.NoError(t, err)
}

func TestRootCommandFailsWithoutApp(t *testing.T) {
	original := newApp
	newApp = func(context.Context, config.Config) (App, error) {
		return nil, fmt.Errorf("boom")
	}
	defer func() { newApp = original }()

	root := newRootCmd()
	root.SetArgs([]string{"aggregate"})
	err := root.Execute()
	assert.ErrorContains(t, err, "initialize application services")
}

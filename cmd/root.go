// Package cmd defines and implements the CLI commands for the hostmerge
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wakuvilla/hostmerge/internal/app"
	"github.com/wakuvilla/hostmerge/internal/config"
	"github.com/wakuvilla/hostmerge/internal/history"
	"github.com/wakuvilla/hostmerge/internal/notify"
	"github.com/wakuvilla/hostmerge/internal/storage"
	"github.com/wakuvilla/hostmerge/internal/store"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// App is the slice of the application container the commands use. It is
// an interface so tests can inject a mock app.
type App interface {
	Close()
	Config() config.Config
	Logger() *zap.Logger
	Notifier() notify.Notifier
	Output() storage.Provider
	HistoryStore() history.Store
	HealthStore() *store.HealthStore
}

// newApp is the application factory. It is a variable so tests can
// replace it with a mock factory.
var newApp = func(ctx context.Context, cfg config.Config) (App, error) {
	return app.NewApp(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostmerge",
		Short: "Aggregates block lists into one unified hosts file.",
		Long: `hostmerge downloads domain and IP block lists from many remote
sources, normalizes them into one deduplicated list, and tracks each
source's reliability so chronically failing sources are skipped for a
cooldown period.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Build the service container after flags are parsed but before
		// the subcommand runs, and hand it down via the context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hostmerge.yaml)")

	cmd.AddCommand(newAggregateCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wakuvilla/hostmerge/internal/blocklist"
	"github.com/wakuvilla/hostmerge/internal/clock"
	"github.com/wakuvilla/hostmerge/internal/clock/system"
	"github.com/wakuvilla/hostmerge/internal/config"
	"github.com/wakuvilla/hostmerge/internal/fetch"
	"github.com/wakuvilla/hostmerge/internal/history"
	"github.com/wakuvilla/hostmerge/internal/metrics"
	"github.com/wakuvilla/hostmerge/internal/sources"
)

// newAggregateCmd creates the aggregate command, which runs the full
// pipeline once: refresh and load the sources, fetch them on a worker
// pool, merge the entries, write the unified artifact and record the
// daily count.
func newAggregateCmd() *cobra.Command {
	var refreshSources bool
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Fetch every source and write the merged block list.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return runAggregate(cmd.Context(), appInstance, refreshSources)
		},
	}
	cmd.Flags().BoolVar(&refreshSources, "refresh-sources", true, "re-download the source index before aggregating")
	return cmd
}

// runAggregate executes one aggregation run. Any failure is reported to
// the configured notifier before being returned, so an unattended run
// never fails silently.
func runAggregate(ctx context.Context, appInstance App, refresh bool) error {
	runID := uuid.NewString()
	logger := appInstance.Logger().With(zap.String("run_id", runID))

	if err := aggregate(ctx, appInstance, logger, refresh); err != nil {
		metrics.ObserveRun("error", 0, 0)
		notifyErr := appInstance.Notifier().Notify(ctx, fmt.Sprintf("hostmerge run %s failed: %v", runID, err))
		if notifyErr != nil {
			logger.Warn("failure notification not delivered", zap.Error(notifyErr))
		}
		return err
	}
	return nil
}

func aggregate(ctx context.Context, appInstance App, logger *zap.Logger, refresh bool) error {
	cfg := appInstance.Config()

	fetcher, err := fetch.NewCollyFetcher(fetch.Config{
		Timeout:     cfg.FetchTimeout(),
		UserAgent:   cfg.Fetch.UserAgent,
		Concurrency: cfg.Fetch.Concurrency,
	}, logger)
	if err != nil {
		return fmt.Errorf("build fetcher: %w", err)
	}

	manager := sources.NewManager(cfg.Sources.File, cfg.Sources.IndexURL, cfg.Sources.AdditionalFile, fetcher, logger)
	if refresh {
		if err := manager.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh sources: %w", err)
		}
	}
	urls, err := manager.Load()
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("source list %s is empty", cfg.Sources.File)
	}
	logger.Info("starting aggregation", zap.Int("sources", len(urls)), zap.String("mode", cfg.Output.Mode))

	clk := system.New()
	tracker := blocklist.NewTracker(
		appInstance.HealthStore().Load(),
		cfg.Health.Threshold,
		cfg.Health.CooldownDays,
		clk,
		appInstance.Notifier(),
		logger,
	)

	extract := blocklist.ParseHosts
	renderOpts := blocklist.RenderOptions{
		Title:       cfg.Output.Title,
		Description: "Merged and deduplicated block list.",
		IndexURL:    cfg.Sources.IndexURL,
		Sinkhole:    cfg.Output.Sinkhole,
		EntryLabel:  "domains",
	}
	if cfg.Output.Mode == config.ModeIPv4 {
		extract = blocklist.ExtractIPv4
		renderOpts.Sinkhole = ""
		renderOpts.EntryLabel = "addresses"
	}

	aggregator := blocklist.NewAggregator(fetcher, tracker, extract, cfg.Fetch.Concurrency, logger)
	result := aggregator.Run(ctx, urls)

	// Health state is persisted even when the run later fails, so strike
	// counts survive across runs.
	if err := appInstance.HealthStore().Save(tracker.Records()); err != nil {
		return fmt.Errorf("save health state: %w", err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("aggregation interrupted: %w", ctxErr)
	}

	artifact := blocklist.Render(result, urls, clk.Now(), renderOpts)
	if err := appInstance.Output().Save(ctx, cfg.Output.Path, artifact); err != nil {
		return fmt.Errorf("write merged output: %w", err)
	}

	if err := recordHistory(ctx, appInstance, clk, result.TotalUnique); err != nil {
		return fmt.Errorf("record daily count: %w", err)
	}

	metrics.ObserveRun("ok", result.TotalUnique, result.Skipped)
	logger.Info("aggregation complete",
		zap.Int("unique_entries", result.TotalUnique),
		zap.Int("sources_skipped", result.Skipped),
	)
	return nil
}

// recordHistory upserts today's unique count into the daily series and
// persists it, trimmed to the configured retention.
func recordHistory(ctx context.Context, appInstance App, clk clock.Clock, total int) error {
	entries, err := appInstance.HistoryStore().Load(ctx)
	if err != nil {
		return err
	}
	series := history.NewSeries(entries, appInstance.Config().History.Retention)
	series.Upsert(clock.Today(clk), total)
	return appInstance.HistoryStore().Save(ctx, series.Entries())
}

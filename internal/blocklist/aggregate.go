package blocklist

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// FetchResult is the explicit outcome of one source download. A network
// failure is not an error to the aggregator: Text is empty and Err carries
// the cause for logging.
type FetchResult struct {
	URL  string
	Text string
	Err  error
}

// Success reports whether the fetch produced usable text. An empty body,
// even from a 2xx response, counts against the source.
func (r FetchResult) Success() bool {
	return r.Err == nil && r.Text != ""
}

// Fetcher retrieves the raw text of one source URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// Result is the outcome of one aggregation run.
type Result struct {
	Merged      map[string]struct{}
	PerSource   map[string]int
	TotalUnique int
	Skipped     int
}

// Aggregator drives the fetch pool, the health tracker and the extractor
// across all sources and merges their entries into a global unique set.
type Aggregator struct {
	fetcher Fetcher
	tracker *Tracker
	extract Extractor
	workers int
	logger  *zap.Logger
}

// NewAggregator wires the aggregation pipeline. workers fixes the pool
// size independent of the source count.
func NewAggregator(fetcher Fetcher, tracker *Tracker, extract Extractor, workers int, logger *zap.Logger) *Aggregator {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		fetcher: fetcher,
		tracker: tracker,
		extract: extract,
		workers: workers,
		logger:  logger,
	}
}

// Run processes all sources and returns the merged set, the per-source
// entry counts and the global unique total. Fetches run on a bounded pool;
// every mutation of shared state happens here, as results arrive, so
// totals are deterministic regardless of completion order.
func (a *Aggregator) Run(ctx context.Context, sources []string) Result {
	merged := make(map[string]struct{})
	perSource := make(map[string]int, len(sources))
	skipped := 0

	pending := make([]string, 0, len(sources))
	for _, url := range sources {
		if a.tracker.ShouldSkip(url) {
			perSource[url] = 0
			skipped++
			continue
		}
		pending = append(pending, url)
	}

	jobs := make(chan string)
	results := make(chan FetchResult)

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				results <- a.fetcher.Fetch(ctx, url)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, url := range pending {
			select {
			case jobs <- url:
			case <-ctx.Done():
				return
			}
		}
	}()

	for res := range results {
		if res.Success() {
			entries := a.extract(res.Text)
			perSource[res.URL] = len(entries)
			for entry := range entries {
				merged[entry] = struct{}{}
			}
			a.tracker.RecordResult(ctx, res.URL, true)
			a.logger.Info("source processed",
				zap.String("url", res.URL),
				zap.Int("entries", len(entries)),
			)
			continue
		}
		perSource[res.URL] = 0
		a.tracker.RecordResult(ctx, res.URL, false)
		a.logger.Warn("source yielded no entries",
			zap.String("url", res.URL),
			zap.Error(res.Err),
		)
	}

	// Sources never dispatched because the context ended still get an
	// accounting row, but no strike against their health.
	for _, url := range pending {
		if _, ok := perSource[url]; !ok {
			perSource[url] = 0
		}
	}

	return Result{
		Merged:      merged,
		PerSource:   perSource,
		TotalUnique: len(merged),
		Skipped:     skipped,
	}
}

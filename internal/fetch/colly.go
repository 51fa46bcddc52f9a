// Package fetch downloads raw source text over HTTP using Colly.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/wakuvilla/hostmerge/internal/blocklist"
	"github.com/wakuvilla/hostmerge/internal/metrics"
)

// Config controls the HTTP client behavior.
type Config struct {
	Timeout     time.Duration
	UserAgent   string
	Concurrency int
}

// CollyFetcher implements blocklist.Fetcher using the Colly collector.
// Every failure mode (non-2xx, timeout, connection refused) is reported as
// an empty-text FetchResult with the cause attached, never as a thrown
// error to the caller.
type CollyFetcher struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based fetcher.
func NewCollyFetcher(cfg Config, logger *zap.Logger) (*CollyFetcher, error) {
	if cfg.Timeout <= 0 {
		return nil, errors.New("fetch timeout must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []colly.CollectorOption{
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	}
	base := colly.NewCollector(opts...)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   8,
		MaxConnsPerHost:       cfg.Concurrency * 2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &CollyFetcher{
		baseCollector: base,
		logger:        logger,
	}, nil
}

// Fetch retrieves one source URL. The returned result carries the body text
// on success and an empty text plus the cause on any failure.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) blocklist.FetchResult {
	start := time.Now()
	res := f.fetch(ctx, rawURL)

	status := "ok"
	if !res.Success() {
		status = "error"
		f.logger.Warn("download failed", zap.String("url", rawURL), zap.Error(res.Err))
	}
	metrics.ObserveFetch(rawURL, status, time.Since(start))
	return res
}

func (f *CollyFetcher) fetch(ctx context.Context, rawURL string) blocklist.FetchResult {
	collector := f.baseCollector.Clone()
	resultCh := make(chan blocklist.FetchResult, 1)
	var once sync.Once
	send := func(res blocklist.FetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(blocklist.FetchResult{
			URL:  rawURL,
			Text: string(r.Body),
		})
	})

	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(blocklist.FetchResult{URL: rawURL, Err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return blocklist.FetchResult{URL: rawURL, Err: err}
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return blocklist.FetchResult{URL: rawURL, Err: err}
		}
		return res
	default:
		return blocklist.FetchResult{URL: rawURL, Err: errors.New("fetch produced no result")}
	}
}

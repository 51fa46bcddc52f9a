package blocklist

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wakuvilla/hostmerge/internal/clock"
)

// DateLayout is the calendar format used for persisted cooldown dates.
const DateLayout = "2006-01-02"

// HealthRecord tracks consecutive failures and the cooldown date for one
// source URL. SkipUntil is only set once the failure threshold is reached
// and clears on any success.
type HealthRecord struct {
	ConsecutiveErrors int    `json:"consecutive_errors"`
	SkipUntil         string `json:"skip_until,omitempty"`
}

// Notifier delivers best-effort operator notifications.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Tracker is the per-source failure state machine. It owns the health
// records for the duration of a run; mutation happens only from the
// coordinating goroutine, so no locking is needed.
type Tracker struct {
	records      map[string]HealthRecord
	threshold    int
	cooldownDays int
	clock        clock.Clock
	notifier     Notifier
	logger       *zap.Logger
}

// NewTracker builds a Tracker over previously persisted records. The map is
// taken over by the tracker; pass a fresh one when no state exists.
func NewTracker(
	records map[string]HealthRecord,
	threshold int,
	cooldownDays int,
	clk clock.Clock,
	notifier Notifier,
	logger *zap.Logger,
) *Tracker {
	if records == nil {
		records = make(map[string]HealthRecord)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		records:      records,
		threshold:    threshold,
		cooldownDays: cooldownDays,
		clock:        clk,
		notifier:     notifier,
		logger:       logger,
	}
}

// ShouldSkip reports whether the source is inside its cooldown window.
// A malformed stored date fails open: the fetch proceeds.
func (t *Tracker) ShouldSkip(url string) bool {
	rec, ok := t.records[url]
	if !ok || rec.SkipUntil == "" {
		return false
	}
	until, err := time.ParseInLocation(DateLayout, rec.SkipUntil, time.UTC)
	if err != nil {
		t.logger.Warn("malformed skip_until date, fetching anyway",
			zap.String("url", url),
			zap.String("skip_until", rec.SkipUntil),
		)
		return false
	}
	if until.After(clock.Today(t.clock)) {
		t.logger.Info("skipping source during cooldown",
			zap.String("url", url),
			zap.String("skip_until", rec.SkipUntil),
		)
		return true
	}
	return false
}

// RecordResult updates the source's record after a fetch attempt. A success
// resets the record (announcing recovery when it had failures); a failure
// increments the strike count and, at the threshold, starts the cooldown.
func (t *Tracker) RecordResult(ctx context.Context, url string, success bool) {
	rec := t.records[url]
	if success {
		if rec.ConsecutiveErrors > 0 || rec.SkipUntil != "" {
			t.notify(ctx, fmt.Sprintf("%s recovered successfully. Resetting error count.", url))
		}
		rec.ConsecutiveErrors = 0
		rec.SkipUntil = ""
		t.records[url] = rec
		return
	}

	rec.ConsecutiveErrors++
	if rec.ConsecutiveErrors < t.threshold {
		t.notify(ctx, fmt.Sprintf("%s failed (%d/%d).", url, rec.ConsecutiveErrors, t.threshold))
	} else {
		until := clock.Today(t.clock).AddDate(0, 0, t.cooldownDays).Format(DateLayout)
		rec.SkipUntil = until
		t.notify(ctx, fmt.Sprintf("%s failed %d times. It will be skipped until %s.", url, rec.ConsecutiveErrors, until))
	}
	t.records[url] = rec
}

// Records exposes the current state for persistence at run end.
func (t *Tracker) Records() map[string]HealthRecord {
	return t.records
}

func (t *Tracker) notify(ctx context.Context, text string) {
	t.logger.Info("source health changed", zap.String("event", text))
	if t.notifier == nil {
		return
	}
	if err := t.notifier.Notify(ctx, text); err != nil {
		t.logger.Warn("notification delivery failed", zap.Error(err))
	}
}

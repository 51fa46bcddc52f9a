// Package notify delivers best-effort operator notifications about source
// health and run failures. A sink's own failure must never abort a run.
package notify

import "context"

// Notifier sends one text notification.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// NoopNotifier discards every notification.
type NoopNotifier struct{}

// Notify for NoopNotifier does nothing and returns nil.
func (NoopNotifier) Notify(context.Context, string) error { return nil }

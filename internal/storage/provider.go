// Package storage defines the interfaces for publishing the merged output
// artifact. The abstraction keeps the pipeline independent of where the
// unified list ends up (local filesystem, Google Cloud Storage, or nowhere
// for dry runs).
package storage

import "context"

// Provider defines the common interface for an output publisher.
type Provider interface {
	// Save writes data under the given object name/path.
	Save(ctx context.Context, objectName string, data []byte) error
}

// NoOpProvider is a publisher that performs no operations. It is useful for
// dry runs where entries are merged but the artifact is discarded.
type NoOpProvider struct{}

// Save for NoOpProvider does nothing and always returns nil.
func (NoOpProvider) Save(context.Context, string, []byte) error { return nil }

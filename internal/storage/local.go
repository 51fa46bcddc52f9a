package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalProvider writes artifacts to the local filesystem, creating parent
// directories as needed. The write goes through a temp file and rename so
// consumers never observe a half-written list.
type LocalProvider struct{}

// NewLocalProvider creates a filesystem publisher.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Save writes data to the given path atomically.
func (*LocalProvider) Save(_ context.Context, objectName string, data []byte) error {
	if dir := filepath.Dir(objectName); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	tmp := objectName + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", objectName, err)
	}
	if err := os.Rename(tmp, objectName); err != nil {
		return fmt.Errorf("replace output %s: %w", objectName, err)
	}
	return nil
}

package testing

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// TestContext returns a context that is cancelled when the test ends or
// after 30 seconds, whichever comes first.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// PeersFilePath returns a peers file location inside a fresh temp dir.
// The file itself is not created.
func PeersFilePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "sysconfig", "etcd-peers")
}

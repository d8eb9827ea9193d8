// Package envfile renders and writes the etcd peers file, the environment
// file the etcd unit sources on startup.
package envfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/imamik/etcdseed/internal/bootstrap"
	"github.com/imamik/etcdseed/internal/etcd"
)

// Keys written to the peers file.
const (
	KeyInitialClusterState = "ETCD_INITIAL_CLUSTER_STATE"
	KeyName                = "ETCD_NAME"
	KeyInitialCluster      = "ETCD_INITIAL_CLUSTER"
	KeyProxy               = "ETCD_PROXY"
)

// ErrExists is returned by Write when the peers file is already present.
var ErrExists = errors.New("peers file already exists")

// Render returns the peers file content for state.
func Render(state *bootstrap.ClusterState) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s=%s\n", KeyInitialClusterState, state.State)
	fmt.Fprintf(&b, "%s=%s\n", KeyName, state.Self.Name)
	fmt.Fprintf(&b, "%s=%s\n", KeyInitialCluster, etcd.InitialCluster(state.Members))
	fmt.Fprintf(&b, "%s=off\n", KeyProxy)
	return b.Bytes()
}

// Exists reports whether the peers file is present. A present file means
// the node has already been bootstrapped.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Write stores data at path atomically and never replaces an existing file.
// The content lands in a temp file in the same directory, is synced, and is
// then hard-linked into place; the link fails if path already exists.
func Write(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".etcd-peers-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}

	if err := os.Link(tmpPath, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
		return fmt.Errorf("link %s: %w", path, err)
	}
	return nil
}

// Read parses a peers file into its key/value pairs.
func Read(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read peers file %s: %w", path, err)
	}
	return values, nil
}

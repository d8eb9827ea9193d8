package s3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/imamik/etcdseed/internal/bootstrap"
)

// ErrNotArchived is returned by Load when no state exists for a node.
var ErrNotArchived = errors.New("no archived state")

// Archive stores one ClusterState per node.
type Archive struct {
	client *Client
	bucket string
	prefix string
}

// NewArchive creates an archive in bucket under prefix.
func NewArchive(client *Client, bucket, prefix string) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key of the state of the named node.
func (a *Archive) Key(name string) string {
	return path.Join(a.prefix, name+".json")
}

// Store uploads state under the name of its Self node.
func (a *Archive) Store(ctx context.Context, state *bootstrap.ClusterState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cluster state: %w", err)
	}

	key := a.Key(state.Self.Name)
	if err := a.client.PutObject(ctx, a.bucket, key, data); err != nil {
		return err
	}
	log.Printf("[Archive] Stored cluster state at s3://%s/%s", a.bucket, key)
	return nil
}

// Load downloads the state archived by the named node.
func (a *Archive) Load(ctx context.Context, name string) (*bootstrap.ClusterState, error) {
	data, err := a.client.GetObject(ctx, a.bucket, a.Key(name))
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotArchived)
		}
		return nil, err
	}

	var state bootstrap.ClusterState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode cluster state of %s: %w", name, err)
	}
	return &state, nil
}

// Nodes returns the names of every node with an archived state, sorted.
func (a *Archive) Nodes(ctx context.Context) ([]string, error) {
	prefix := ""
	if a.prefix != "" {
		prefix = a.prefix + "/"
	}
	keys, err := a.client.ListObjects(ctx, a.bucket, prefix)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, key := range keys {
		name := strings.TrimPrefix(key, prefix)
		if strings.Contains(name, "/") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)
	return names, nil
}

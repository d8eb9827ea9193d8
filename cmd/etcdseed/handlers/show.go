package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/imamik/etcdseed/internal/config"
	"github.com/imamik/etcdseed/internal/envfile"
)

// ShowOptions selects what the show command prints.
type ShowOptions struct {
	ConfigPath string
	Archived   bool
	Node       string
}

// peersFileKeys is the order the peers file is written in.
var peersFileKeys = []string{
	envfile.KeyInitialClusterState,
	envfile.KeyName,
	envfile.KeyInitialCluster,
	envfile.KeyProxy,
}

// Show prints the peers file, or with Archived the archived cluster state.
func Show(ctx context.Context, out io.Writer, opts ShowOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.Archived {
		if err := requireArchive(cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		name := opts.Node
		if name == "" {
			// The node's own name, when it has been bootstrapped.
			if values, err := envfile.Read(cfg.Etcd.PeersFile); err == nil {
				name = values[envfile.KeyName]
			}
		}
		return showArchived(ctx, out, name, cfg)
	}

	values, err := envfile.Read(cfg.Etcd.PeersFile)
	if err != nil {
		return err
	}

	if isTerminal() {
		_, err = io.WriteString(out, renderPeers(cfg.Etcd.PeersFile, values))
		return err
	}
	for _, key := range orderedKeys(values) {
		if _, err := fmt.Fprintf(out, "%s=%s\n", key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

func showArchived(ctx context.Context, out io.Writer, name string, cfg *config.Config) error {
	a, err := newArchive(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create archive client: %w", err)
	}

	if name == "" {
		nodes, err := a.Nodes(ctx)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			if _, err := fmt.Fprintln(out, n); err != nil {
				return err
			}
		}
		return nil
	}

	state, err := a.Load(ctx, name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

// orderedKeys returns the known keys in file order followed by any other
// keys, sorted.
func orderedKeys(values map[string]string) []string {
	known := make(map[string]bool, len(peersFileKeys))
	var keys []string
	for _, k := range peersFileKeys {
		known[k] = true
		if _, ok := values[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range values {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

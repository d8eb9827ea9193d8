// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/etcdseed/internal/bootstrap"
	"github.com/imamik/etcdseed/internal/config"
	"github.com/imamik/etcdseed/internal/discovery"
	"github.com/imamik/etcdseed/internal/etcd"
	"github.com/imamik/etcdseed/internal/platform/aws"
	"github.com/imamik/etcdseed/internal/platform/cloudflare"
	"github.com/imamik/etcdseed/internal/platform/hcloud"
	"github.com/imamik/etcdseed/internal/platform/s3"
)

// StateArchive stores and retrieves bootstrap results.
type StateArchive interface {
	Store(ctx context.Context, state *bootstrap.ClusterState) error
	Load(ctx context.Context, name string) (*bootstrap.ClusterState, error)
	Nodes(ctx context.Context) ([]string, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig loads the configuration (for testing injection).
	loadConfig = config.Load

	// newProvider creates the peer group provider selected by PEER_PROVIDER.
	newProvider = func(ctx context.Context, cfg *config.Config) (discovery.Provider, error) {
		switch cfg.Provider.Name {
		case config.ProviderHCloud:
			return hcloud.NewRealClient(cfg.Provider.HCloudToken, cfg.Selector(), cfg.URLs(),
				hcloud.WithRetry(cfg.Retry.MaxRetries, cfg.Retry.Interval)), nil
		default:
			session, err := aws.NewSession(ctx)
			if err != nil {
				return nil, err
			}
			return session.PeerGroup(cfg.URLs(), cfg.Retry.MaxRetries, cfg.Retry.Interval), nil
		}
	}

	// newPublisher creates the SRV publisher selected by DNS_PROVIDER.
	newPublisher = func(ctx context.Context, cfg *config.Config) (discovery.Publisher, error) {
		switch cfg.DNS.Provider {
		case config.DNSCloudflare:
			return cloudflare.NewClient(cfg.DNS.CloudflareToken), nil
		default:
			return aws.LoadRoute53Publisher(ctx, cfg.DNS.HostedZoneID)
		}
	}

	// newArchive creates the state archive in ARCHIVE_BUCKET.
	newArchive = func(ctx context.Context, cfg *config.Config) (StateArchive, error) {
		client, err := s3.NewClient(ctx, cfg.Archive.Endpoint, cfg.Archive.Region, cfg.Archive.AccessKey, cfg.Archive.SecretKey)
		if err != nil {
			return nil, err
		}
		return s3.NewArchive(client, cfg.Archive.Bucket, cfg.Archive.Prefix), nil
	}

	// newAdminAPI creates the etcd members API client.
	newAdminAPI = func(cfg *config.Config) bootstrap.AdminAPI {
		return etcd.NewClient(etcd.WithProbeTimeout(cfg.Retry.ProbeTimeout))
	}

	// writeTextfile exports a registry for the node_exporter textfile collector.
	writeTextfile = prometheus.WriteToTextfile

	// isTerminal reports whether stdout is an interactive terminal.
	isTerminal = isInteractiveTTY
)

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func debugLogger(verbose bool) bootstrap.Logf {
	if verbose {
		return log.Printf
	}
	return func(string, ...any) {}
}

func requireArchive(cfg *config.Config) error {
	if !cfg.ArchiveEnabled() {
		return fmt.Errorf("ARCHIVE_BUCKET is not set")
	}
	return nil
}

package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/imamik/etcdseed/internal/bootstrap"
	"github.com/imamik/etcdseed/internal/config"
	"github.com/imamik/etcdseed/internal/envfile"
)

// Bootstrap runs the first-boot workflow of an etcd node.
//
// This function orchestrates the complete workflow:
//  1. Loads configuration and returns early if the peers file exists;
//     the remaining settings are only validated when there is work to do
//  2. Discovers this node and its peers through the configured provider
//  3. Joins the live cluster or founds a new one
//  4. Writes the peers file
//  5. Publishes SRV records and archives the cluster state when configured
//
// Publishing, archiving and metrics export never fail a run whose peers file
// has been written.
func Bootstrap(ctx context.Context, configPath string, verbose bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := cfg.Etcd.PeersFile
	exists, err := envfile.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("[Bootstrap] %s already exists, nothing to do", path)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	start := time.Now()
	metrics := bootstrap.NewMetrics()
	defer exportMetrics(cfg, metrics)

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		metrics.ObserveRun("error", time.Since(start).Seconds(), 0)
		return fmt.Errorf("failed to create %s peer provider: %w", cfg.Provider.Name, err)
	}

	identity, err := provider.Discover(ctx)
	if err != nil {
		metrics.ObserveRun("error", time.Since(start).Seconds(), 0)
		return fmt.Errorf("failed to discover peers: %w", err)
	}
	log.Printf("[Bootstrap] Node %s in group %s, %d candidate peers", identity.Self.Name, identity.Group, len(identity.Peers))

	engine := bootstrap.NewEngine(newAdminAPI(cfg),
		bootstrap.WithMaxRetries(cfg.Retry.MaxRetries),
		bootstrap.WithRetryInterval(cfg.Retry.Interval),
		bootstrap.WithMetrics(metrics),
		bootstrap.WithDebugf(debugLogger(verbose)),
	)

	state, err := engine.Run(ctx, identity.Self, identity.Peers)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	if err := envfile.Write(path, envfile.Render(state), 0o644); err != nil {
		return fmt.Errorf("failed to write peers file: %w", err)
	}
	log.Printf("[Bootstrap] Wrote %s (state=%s, %d members)", path, state.State, len(state.Members))

	publish(ctx, cfg, state)
	archive(ctx, cfg, state)

	return nil
}

func publish(ctx context.Context, cfg *config.Config, state *bootstrap.ClusterState) {
	if missing := cfg.DNSMissing(); len(missing) > 0 {
		log.Printf("[DNS] Warning: %s not set, skipping SRV records", strings.Join(missing, ", "))
		return
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		log.Printf("[DNS] Warning: failed to create %s publisher: %v", cfg.DNS.Provider, err)
		return
	}
	if err := publisher.Publish(ctx, cfg.DNS.DomainName, state.Members); err != nil {
		log.Printf("[DNS] Warning: failed to publish SRV records: %v", err)
		return
	}
	log.Printf("[DNS] Published SRV records for %s", cfg.DNS.DomainName)
}

func archive(ctx context.Context, cfg *config.Config, state *bootstrap.ClusterState) {
	if !cfg.ArchiveEnabled() {
		return
	}

	a, err := newArchive(ctx, cfg)
	if err != nil {
		log.Printf("[Archive] Warning: failed to create archive client: %v", err)
		return
	}
	if err := a.Store(ctx, state); err != nil {
		log.Printf("[Archive] Warning: failed to store cluster state: %v", err)
	}
}

func exportMetrics(cfg *config.Config, metrics *bootstrap.Metrics) {
	if cfg.MetricsTextfile == "" {
		return
	}
	if err := writeTextfile(cfg.MetricsTextfile, metrics.Registry); err != nil {
		log.Printf("[Bootstrap] Warning: failed to write metrics to %s: %v", cfg.MetricsTextfile, err)
	}
}

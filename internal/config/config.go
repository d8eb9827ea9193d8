package config

import (
	"time"

	"github.com/imamik/etcdseed/internal/etcd"
	"github.com/imamik/etcdseed/internal/util/labels"
)

// Peer group providers.
const (
	ProviderAWS    = "aws"
	ProviderHCloud = "hcloud"
)

// DNS providers.
const (
	DNSRoute53    = "route53"
	DNSCloudflare = "cloudflare"
)

// Config holds every setting of a bootstrap run.
type Config struct {
	Etcd     EtcdConfig     `yaml:"etcd"`
	Retry    RetryConfig    `yaml:"retry"`
	Provider ProviderConfig `yaml:"provider"`
	DNS      DNSConfig      `yaml:"dns"`
	Archive  ArchiveConfig  `yaml:"archive"`

	// MetricsTextfile is the node_exporter textfile the run metrics are
	// written to. Empty disables metrics export.
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// EtcdConfig describes the etcd listeners and the peers file.
type EtcdConfig struct {
	PeersFile    string `yaml:"peers_file"`
	ClientScheme string `yaml:"client_scheme"`
	PeerScheme   string `yaml:"peer_scheme"`
	ClientPort   int    `yaml:"client_port"`
	PeerPort     int    `yaml:"peer_port"`
}

// RetryConfig bounds the members API calls.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	Interval     time.Duration `yaml:"interval"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// ProviderConfig selects where identity and peers come from.
type ProviderConfig struct {
	Name string `yaml:"name"`

	// Hetzner Cloud
	HCloudToken   string `yaml:"hcloud_token"`
	LabelSelector string `yaml:"label_selector"`
	Group         string `yaml:"group"`
	// Labels narrow the selector derived from Group.
	Labels map[string]string `yaml:"labels"`
}

// DNSConfig configures SRV record publishing. Publishing is skipped unless
// the provider's required values are present.
type DNSConfig struct {
	Provider        string `yaml:"provider"`
	DomainName      string `yaml:"domain_name"`
	HostedZoneID    string `yaml:"hosted_zone_id"`
	CloudflareToken string `yaml:"cloudflare_api_token"`
}

// ArchiveConfig configures uploading the cluster state to object storage.
type ArchiveConfig struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Etcd: EtcdConfig{
			PeersFile:    "/etc/sysconfig/etcd-peers",
			ClientScheme: "http",
			PeerScheme:   "http",
			ClientPort:   2379,
			PeerPort:     2380,
		},
		Retry: RetryConfig{
			MaxRetries:   10,
			Interval:     1 * time.Second,
			ProbeTimeout: 3 * time.Second,
		},
		Provider: ProviderConfig{
			Name: ProviderAWS,
		},
		DNS: DNSConfig{
			Provider: DNSRoute53,
		},
		Archive: ArchiveConfig{
			Prefix: "etcdseed",
			Region: "us-east-1",
		},
	}
}

// URLs returns the builder for member URLs on the configured listeners.
func (c *Config) URLs() etcd.URLBuilder {
	return etcd.URLBuilder{
		PeerScheme:   c.Etcd.PeerScheme,
		PeerPort:     c.Etcd.PeerPort,
		ClientScheme: c.Etcd.ClientScheme,
		ClientPort:   c.Etcd.ClientPort,
	}
}

// Selector returns the hcloud label selector for the peer group. An explicit
// selector wins over the one derived from the group name and labels.
func (c *Config) Selector() string {
	if c.Provider.LabelSelector != "" {
		return c.Provider.LabelSelector
	}
	if c.Provider.Group != "" {
		return labels.SelectorForGroup(c.Provider.Group, c.Provider.Labels)
	}
	return ""
}

// DNSMissing returns the environment names of the settings DNS publishing
// still needs. An empty result means publishing is enabled.
func (c *Config) DNSMissing() []string {
	var missing []string
	switch c.DNS.Provider {
	case DNSCloudflare:
		if c.DNS.CloudflareToken == "" {
			missing = append(missing, "CLOUDFLARE_API_TOKEN")
		}
	default:
		if c.DNS.HostedZoneID == "" {
			missing = append(missing, "HOSTED_ZONE_ID")
		}
	}
	if c.DNS.DomainName == "" {
		missing = append(missing, "DOMAIN_NAME")
	}
	return missing
}

// ArchiveEnabled reports whether the cluster state should be uploaded.
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnv overrides cfg with the environment.
//
// Environment Variables:
//   - PEERS_FILE (default: /etc/sysconfig/etcd-peers)
//   - CLIENT_SCHEME, PEER_SCHEME (default: http)
//   - CLIENT_PORT (default: 2379), PEER_PORT (default: 2380)
//   - MAX_RETRIES (default: 10)
//   - RETRY_INTERVAL (default: 1s)
//   - PROBE_TIMEOUT (default: 3s)
//   - PEER_PROVIDER (default: aws), HCLOUD_TOKEN, HCLOUD_LABEL_SELECTOR, HCLOUD_GROUP
//   - HCLOUD_LABELS (key=value,key=value; merged into the HCLOUD_GROUP selector)
//   - DNS_PROVIDER (default: route53), HOSTED_ZONE_ID, DOMAIN_NAME, CLOUDFLARE_API_TOKEN
//   - ARCHIVE_BUCKET, ARCHIVE_PREFIX, ARCHIVE_ENDPOINT, ARCHIVE_REGION,
//     ARCHIVE_ACCESS_KEY, ARCHIVE_SECRET_KEY
//   - METRICS_TEXTFILE
func applyEnv(cfg *Config) {
	cfg.Etcd.PeersFile = parseString("PEERS_FILE", cfg.Etcd.PeersFile)
	cfg.Etcd.ClientScheme = parseString("CLIENT_SCHEME", cfg.Etcd.ClientScheme)
	cfg.Etcd.PeerScheme = parseString("PEER_SCHEME", cfg.Etcd.PeerScheme)
	cfg.Etcd.ClientPort = parseInt("CLIENT_PORT", cfg.Etcd.ClientPort)
	cfg.Etcd.PeerPort = parseInt("PEER_PORT", cfg.Etcd.PeerPort)

	cfg.Retry.MaxRetries = parseInt("MAX_RETRIES", cfg.Retry.MaxRetries)
	cfg.Retry.Interval = parseDuration("RETRY_INTERVAL", cfg.Retry.Interval)
	cfg.Retry.ProbeTimeout = parseDuration("PROBE_TIMEOUT", cfg.Retry.ProbeTimeout)

	cfg.Provider.Name = parseString("PEER_PROVIDER", cfg.Provider.Name)
	cfg.Provider.HCloudToken = parseString("HCLOUD_TOKEN", cfg.Provider.HCloudToken)
	cfg.Provider.LabelSelector = parseString("HCLOUD_LABEL_SELECTOR", cfg.Provider.LabelSelector)
	cfg.Provider.Group = parseString("HCLOUD_GROUP", cfg.Provider.Group)
	cfg.Provider.Labels = parseLabels("HCLOUD_LABELS", cfg.Provider.Labels)

	cfg.DNS.Provider = parseString("DNS_PROVIDER", cfg.DNS.Provider)
	cfg.DNS.HostedZoneID = parseString("HOSTED_ZONE_ID", cfg.DNS.HostedZoneID)
	cfg.DNS.DomainName = parseString("DOMAIN_NAME", cfg.DNS.DomainName)
	cfg.DNS.CloudflareToken = parseString("CLOUDFLARE_API_TOKEN", cfg.DNS.CloudflareToken)

	cfg.Archive.Bucket = parseString("ARCHIVE_BUCKET", cfg.Archive.Bucket)
	cfg.Archive.Prefix = parseString("ARCHIVE_PREFIX", cfg.Archive.Prefix)
	cfg.Archive.Endpoint = parseString("ARCHIVE_ENDPOINT", cfg.Archive.Endpoint)
	cfg.Archive.Region = parseString("ARCHIVE_REGION", cfg.Archive.Region)
	cfg.Archive.AccessKey = parseString("ARCHIVE_ACCESS_KEY", cfg.Archive.AccessKey)
	cfg.Archive.SecretKey = parseString("ARCHIVE_SECRET_KEY", cfg.Archive.SecretKey)

	cfg.MetricsTextfile = parseString("METRICS_TEXTFILE", cfg.MetricsTextfile)
}

// parseString returns the environment value, or defaultVal when unset.
func parseString(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}

// parseLabels parses key=value pairs separated by commas.
// If the variable is not set or any pair is malformed, the default value is returned.
func parseLabels(envVar string, defaultVal map[string]string) map[string]string {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	result := make(map[string]string)
	for _, pair := range strings.Split(val, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			return defaultVal
		}
		result[k] = v
	}

	return result
}

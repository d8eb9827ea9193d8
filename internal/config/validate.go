package config

import "fmt"

var validSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

// Validate checks the configuration for errors that would make a run fail
// halfway through.
func (c *Config) Validate() error {
	if c.Etcd.PeersFile == "" {
		return fmt.Errorf("peers file path is required")
	}
	if !validSchemes[c.Etcd.ClientScheme] {
		return fmt.Errorf("invalid client scheme %q (must be http or https)", c.Etcd.ClientScheme)
	}
	if !validSchemes[c.Etcd.PeerScheme] {
		return fmt.Errorf("invalid peer scheme %q (must be http or https)", c.Etcd.PeerScheme)
	}
	if err := validatePort("client", c.Etcd.ClientPort); err != nil {
		return err
	}
	if err := validatePort("peer", c.Etcd.PeerPort); err != nil {
		return err
	}

	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.Interval < 0 {
		return fmt.Errorf("retry interval must not be negative, got %s", c.Retry.Interval)
	}
	if c.Retry.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %s", c.Retry.ProbeTimeout)
	}

	switch c.Provider.Name {
	case ProviderAWS:
	case ProviderHCloud:
		if c.Provider.HCloudToken == "" {
			return fmt.Errorf("HCLOUD_TOKEN is required for the hcloud peer provider")
		}
		if c.Selector() == "" {
			return fmt.Errorf("HCLOUD_LABEL_SELECTOR or HCLOUD_GROUP is required for the hcloud peer provider")
		}
	default:
		return fmt.Errorf("unknown peer provider %q (must be %s or %s)", c.Provider.Name, ProviderAWS, ProviderHCloud)
	}

	switch c.DNS.Provider {
	case DNSRoute53, DNSCloudflare:
	default:
		return fmt.Errorf("unknown DNS provider %q (must be %s or %s)", c.DNS.Provider, DNSRoute53, DNSCloudflare)
	}

	return nil
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s port %d (must be 1-65535)", name, port)
	}
	return nil
}

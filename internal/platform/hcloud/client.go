package hcloud

import (
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/hetznercloud/hcloud-go/v2/hcloud/metadata"

	"github.com/imamik/etcdseed/internal/etcd"
	"github.com/imamik/etcdseed/internal/util/retry"
)

// MetadataSource reports the ID of the server the process runs on.
// *metadata.Client satisfies it.
type MetadataSource interface {
	InstanceID() (int64, error)
}

// RealClient implements discovery.Provider using the Hetzner Cloud API.
type RealClient struct {
	client   *hcloud.Client
	metadata MetadataSource
	selector string
	urls     etcd.URLBuilder

	maxRetries int
	interval   time.Duration
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// WithMetadata sets a custom metadata source (useful for testing).
func WithMetadata(m MetadataSource) ClientOption {
	return func(c *RealClient) {
		c.metadata = m
	}
}

// WithRetry bounds the retries of rate limited API calls.
func WithRetry(maxRetries int, interval time.Duration) ClientOption {
	return func(c *RealClient) {
		c.maxRetries = maxRetries
		c.interval = interval
	}
}

// NewRealClient creates a provider that lists the servers matching
// labelSelector and addresses them through urls.
func NewRealClient(token, labelSelector string, urls etcd.URLBuilder, opts ...ClientOption) *RealClient {
	c := &RealClient{
		client:     hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("etcdseed", "")),
		metadata:   metadata.NewClient(),
		selector:   labelSelector,
		urls:       urls,
		maxRetries: 5,
		interval:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RealClient) retryOptions() []retry.Option {
	return []retry.Option{
		retry.WithMaxRetries(c.maxRetries),
		retry.WithInterval(c.interval),
	}
}

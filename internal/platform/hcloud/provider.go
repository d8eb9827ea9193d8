package hcloud

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/etcdseed/internal/discovery"
	"github.com/imamik/etcdseed/internal/etcd"
	"github.com/imamik/etcdseed/internal/util/retry"
)

// ErrNoAddress is returned when a server has neither a private nor a public IPv4.
var ErrNoAddress = errors.New("server has no usable IPv4 address")

// Discover resolves this server and its running siblings.
func (c *RealClient) Discover(ctx context.Context) (*discovery.Identity, error) {
	id, err := c.metadata.InstanceID()
	if err != nil {
		return nil, fmt.Errorf("failed to read instance id from metadata: %w", err)
	}

	self, err := c.getServer(ctx, id)
	if err != nil {
		return nil, err
	}
	selfNode, err := c.node(self)
	if err != nil {
		return nil, err
	}

	servers, err := c.listServers(ctx)
	if err != nil {
		return nil, err
	}

	var peers []etcd.Node
	for _, s := range servers {
		if s.ID == self.ID || s.Status != hcloud.ServerStatusRunning {
			continue
		}
		n, err := c.node(s)
		if err != nil {
			log.Printf("[HCloud] Skipping server %s: %v", s.Name, err)
			continue
		}
		peers = append(peers, n)
	}

	return &discovery.Identity{
		Group: c.selector,
		Self:  selfNode,
		Peers: discovery.ExcludeSelf(selfNode, peers),
	}, nil
}

func (c *RealClient) getServer(ctx context.Context, id int64) (*hcloud.Server, error) {
	var server *hcloud.Server
	err := retry.Fixed(ctx, func(int) error {
		s, _, err := c.client.Server.GetByID(ctx, id)
		if err != nil {
			return classify(err)
		}
		server = s
		return nil
	}, c.retryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to get server %d: %w", id, err)
	}
	if server == nil {
		return nil, fmt.Errorf("server not found: %d", id)
	}
	return server, nil
}

func (c *RealClient) listServers(ctx context.Context) ([]*hcloud.Server, error) {
	var servers []*hcloud.Server
	err := retry.Fixed(ctx, func(int) error {
		all, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
			ListOpts: hcloud.ListOpts{LabelSelector: c.selector},
			Status:   []hcloud.ServerStatus{hcloud.ServerStatusRunning},
		})
		if err != nil {
			return classify(err)
		}
		servers = all
		return nil
	}, c.retryOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return servers, nil
}

// node builds the etcd candidate for a server.
func (c *RealClient) node(s *hcloud.Server) (etcd.Node, error) {
	ip := serverIP(s)
	if ip == "" {
		return etcd.Node{}, fmt.Errorf("%s: %w", s.Name, ErrNoAddress)
	}
	return c.urls.Candidate(s.Name, ip), nil
}

// serverIP prefers the first private network IP over the public IPv4.
func serverIP(s *hcloud.Server) string {
	for _, pn := range s.PrivateNet {
		if pn.IP != nil {
			return pn.IP.String()
		}
	}
	if ip := s.PublicNet.IPv4.IP; ip != nil && !ip.IsUnspecified() {
		return ip.String()
	}
	return ""
}

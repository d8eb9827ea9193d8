// Package hcloud discovers etcd peers on Hetzner Cloud.
//
// The node learns its own server ID from the metadata service, then lists
// every running server that matches a label selector. Each server becomes
// an etcd candidate addressed by its first private network IP, or by its
// public IPv4 when it is not attached to a private network.
//
// API calls are retried on rate limiting and transient unavailability;
// every other API error is returned immediately.
package hcloud

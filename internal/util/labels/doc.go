// Package labels provides the Hetzner Cloud labels that mark etcd servers.
//
// Labels use the etcdseed.io domain prefix. Servers of one etcd cluster
// share a group label; the peer provider lists them with a selector built
// here.
package labels

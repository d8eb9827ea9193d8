// Package etcd models etcd cluster members and talks to the v2 members API.
package etcd

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Node describes one etcd member. ID is empty until the node has been
// accepted into a live cluster. Nodes are values; helpers that filter
// members return new slices and never modify their input.
type Node struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	PeerURLs   []string `json:"peerURLs"`
	ClientURLs []string `json:"clientURLs"`
}

// URLBuilder turns an IP address into the canonical peer and client URLs.
type URLBuilder struct {
	PeerScheme   string
	PeerPort     int
	ClientScheme string
	ClientPort   int
}

// PeerURL returns scheme://ip:port for the peer listener.
func (b URLBuilder) PeerURL(ip string) string {
	return b.PeerScheme + "://" + net.JoinHostPort(ip, strconv.Itoa(b.PeerPort))
}

// ClientURL returns scheme://ip:port for the client listener.
func (b URLBuilder) ClientURL(ip string) string {
	return b.ClientScheme + "://" + net.JoinHostPort(ip, strconv.Itoa(b.ClientPort))
}

// Candidate builds a not-yet-joined node from a machine name and IP.
func (b URLBuilder) Candidate(name, ip string) Node {
	return Node{
		Name:       name,
		PeerURLs:   []string{b.PeerURL(ip)},
		ClientURLs: []string{b.ClientURL(ip)},
	}
}

// Joined reports whether the node carries a cluster-assigned ID.
func (n Node) Joined() bool {
	return n.ID != ""
}

// PeerURL returns the canonical peer URL.
func (n Node) PeerURL() string {
	if len(n.PeerURLs) == 0 {
		return ""
	}
	return n.PeerURLs[0]
}

// ClientURL returns the canonical client URL.
func (n Node) ClientURL() string {
	if len(n.ClientURLs) == 0 {
		return ""
	}
	return n.ClientURLs[0]
}

// PeerHost returns the host part of the canonical peer URL.
func (n Node) PeerHost() string {
	host, _ := mustSplit(n.PeerURL())
	return host
}

// ClientHost returns the host part of the canonical client URL.
func (n Node) ClientHost() string {
	host, _ := mustSplit(n.ClientURL())
	return host
}

// PeerPort returns the port of the canonical peer URL.
func (n Node) PeerPort() int {
	_, port := mustSplit(n.PeerURL())
	return port
}

// ClientPort returns the port of the canonical client URL.
func (n Node) ClientPort() int {
	_, port := mustSplit(n.ClientURL())
	return port
}

// HasClientURL reports whether u is one of the node's client URLs.
func (n Node) HasClientURL(u string) bool {
	for _, c := range n.ClientURLs {
		if c == u {
			return true
		}
	}
	return false
}

// SharesPeerURL reports whether any of the node's peer URLs is also a peer
// URL of one of the given nodes. A multi-homed member only needs one match.
func (n Node) SharesPeerURL(others []Node) bool {
	known := peerURLSet(others)
	for _, u := range n.PeerURLs {
		if _, ok := known[u]; ok {
			return true
		}
	}
	return false
}

func (n Node) String() string {
	return fmt.Sprintf("Node(id=%q, name=%q, peerURLs=%v, clientURLs=%v)", n.ID, n.Name, n.PeerURLs, n.ClientURLs)
}

// InitialCluster renders the etcd --initial-cluster value: name=peerURL,...
func InitialCluster(nodes []Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, n.Name+"="+n.PeerURL())
	}
	return strings.Join(parts, ",")
}

func peerURLSet(nodes []Node) map[string]struct{} {
	set := make(map[string]struct{})
	for _, n := range nodes {
		for _, u := range n.PeerURLs {
			set[u] = struct{}{}
		}
	}
	return set
}

// mustSplit parses an internally built scheme://host:port URL.
// A malformed value here is a programming error.
func mustSplit(raw string) (string, int) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		panic(fmt.Sprintf("etcd: malformed member URL %q", raw))
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		panic(fmt.Sprintf("etcd: member URL %q has no numeric port", raw))
	}
	return u.Hostname(), port
}

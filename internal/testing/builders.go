package testing

import (
	"slices"

	"github.com/imamik/etcdseed/internal/etcd"
)

// DefaultURLs mirrors the stock etcd ports over plain HTTP.
var DefaultURLs = etcd.URLBuilder{
	PeerScheme:   "http",
	PeerPort:     2380,
	ClientScheme: "http",
	ClientPort:   2379,
}

// NodeBuilder provides a fluent interface for constructing member descriptors.
// Each method returns a new builder (immutable) for chaining.
type NodeBuilder struct {
	node etcd.Node
}

// NewNodeBuilder starts a candidate descriptor for name at ip.
func NewNodeBuilder(name, ip string) *NodeBuilder {
	return &NodeBuilder{node: DefaultURLs.Candidate(name, ip)}
}

// WithID marks the node as a live member.
func (b *NodeBuilder) WithID(id string) *NodeBuilder {
	nb := b.clone()
	nb.node.ID = id
	return nb
}

// WithPeerURL appends an extra peer URL (multi-homed member).
func (b *NodeBuilder) WithPeerURL(u string) *NodeBuilder {
	nb := b.clone()
	nb.node.PeerURLs = append(nb.node.PeerURLs, u)
	return nb
}

// WithClientURLs replaces the client URLs.
func (b *NodeBuilder) WithClientURLs(urls ...string) *NodeBuilder {
	nb := b.clone()
	nb.node.ClientURLs = slices.Clone(urls)
	return nb
}

// Build returns the descriptor.
func (b *NodeBuilder) Build() etcd.Node {
	return b.clone().node
}

func (b *NodeBuilder) clone() *NodeBuilder {
	n := b.node
	n.PeerURLs = slices.Clone(b.node.PeerURLs)
	n.ClientURLs = slices.Clone(b.node.ClientURLs)
	return &NodeBuilder{node: n}
}

package testing

import (
	"fmt"

	"github.com/imamik/etcdseed/internal/etcd"
)

// Candidate returns a not-yet-joined descriptor on the default ports.
func Candidate(name, ip string) etcd.Node {
	return NewNodeBuilder(name, ip).Build()
}

// Candidates returns one candidate per IP, named node-0, node-1, ...
func Candidates(ips ...string) []etcd.Node {
	nodes := make([]etcd.Node, 0, len(ips))
	for i, ip := range ips {
		nodes = append(nodes, Candidate(fmt.Sprintf("node-%d", i), ip))
	}
	return nodes
}

// LiveMember returns a joined descriptor on the default ports.
func LiveMember(id, name, ip string) etcd.Node {
	return NewNodeBuilder(name, ip).WithID(id).Build()
}

// Self returns the descriptor of the node running the bootstrap in tests.
func Self() etcd.Node {
	return Candidate("i-self", "10.0.9.9")
}

// Package discovery defines the boundaries of a bootstrap run with the
// outside world: where the node's identity and peer group come from, and
// where the resulting membership is advertised.
package discovery

import (
	"context"
	"fmt"

	"github.com/imamik/etcdseed/internal/etcd"
)

// Identity is what a peer group provider knows about this node.
type Identity struct {
	// Group names the fleet group the node belongs to (ASG name, label selector).
	Group string
	// Self is this node's candidate descriptor.
	Self etcd.Node
	// Peers are the in-service siblings of Self, excluding Self.
	Peers []etcd.Node
}

// Provider answers who this node is and who its candidate peers are.
type Provider interface {
	Discover(ctx context.Context) (*Identity, error)
}

// Publisher advertises the final membership to a name service.
type Publisher interface {
	Publish(ctx context.Context, domain string, members []etcd.Node) error
}

// SRV service labels.
const (
	ServerService = "_etcd-server._tcp"
	ClientService = "_etcd-client._tcp"
)

// RecordTTL is the TTL of published SRV records in seconds.
const RecordTTL = 30

// SRVTarget is one SRV answer: priority and weight are always zero.
type SRVTarget struct {
	Port int
	Host string
}

// Value renders the record in zone-file form: "0 0 <port> <host>".
func (t SRVTarget) Value() string {
	return fmt.Sprintf("0 0 %d %s", t.Port, t.Host)
}

// SRVRecordSet is the full answer for one SRV name.
type SRVRecordSet struct {
	Name    string
	Targets []SRVTarget
}

// SRVRecords builds the server and client record sets for members under
// domain. Names are returned without a trailing dot.
func SRVRecords(domain string, members []etcd.Node) []SRVRecordSet {
	server := SRVRecordSet{Name: ServerService + "." + domain}
	client := SRVRecordSet{Name: ClientService + "." + domain}
	for _, m := range members {
		server.Targets = append(server.Targets, SRVTarget{Port: m.PeerPort(), Host: m.PeerHost()})
		// Members added but not yet started have no client URL.
		if m.ClientURL() != "" {
			client.Targets = append(client.Targets, SRVTarget{Port: m.ClientPort(), Host: m.ClientHost()})
		}
	}
	return []SRVRecordSet{server, client}
}

// ExcludeSelf returns peers without any node sharing a peer URL with self.
func ExcludeSelf(self etcd.Node, peers []etcd.Node) []etcd.Node {
	out := make([]etcd.Node, 0, len(peers))
	for _, p := range peers {
		if p.SharesPeerURL([]etcd.Node{self}) {
			continue
		}
		out = append(out, p)
	}
	return out
}

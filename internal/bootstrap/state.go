package bootstrap

import "github.com/imamik/etcdseed/internal/etcd"

// InitialState is the value of ETCD_INITIAL_CLUSTER_STATE.
type InitialState string

const (
	// StateNew means this node founds a new cluster.
	StateNew InitialState = "new"
	// StateExisting means this node joined a live cluster.
	StateExisting InitialState = "existing"
)

// ClusterState is the outcome of one bootstrap run. It is produced once by
// Engine.Run and never modified afterwards.
type ClusterState struct {
	Discovered  bool         `json:"discovered"`
	Responder   *etcd.Node   `json:"responder,omitempty"`
	LiveMembers []etcd.Node  `json:"liveMembers,omitempty"`
	State       InitialState `json:"state"`
	Members     []etcd.Node  `json:"members"`
	Self        etcd.Node    `json:"self"`
}

// ProbeResult is what the prober learned about existing clusters.
type ProbeResult struct {
	Discovered bool
	// QueriedURL is the client URL that answered.
	QueriedURL string
	Members    []etcd.Node
	// Responder is the member whose client URLs contain QueriedURL.
	// It is nil when no reported member matches, e.g. behind a proxy.
	Responder *etcd.Node
}

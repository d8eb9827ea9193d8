// Package bootstrap decides whether a booting etcd node founds a new cluster
// or joins a live one, evicting members that left the peer group on the way.
//
// The run is strictly sequential: probe the candidates, reconcile the live
// membership, join. Every members API call completes or exhausts its retries
// before the next step starts.
package bootstrap

import (
	"context"
	"errors"

	"github.com/imamik/etcdseed/internal/etcd"
)

var (
	// ErrNoResponder is returned when a cluster answered the probe but none of
	// its reported members owns the queried client URL.
	ErrNoResponder = errors.New("live cluster found but the responding member could not be identified")

	// ErrAlreadyRun is returned when Run is called twice on one Engine.
	ErrAlreadyRun = errors.New("bootstrap engine already ran")
)

// MemberLister reads the membership of a live cluster.
type MemberLister interface {
	ListMembers(ctx context.Context, clientURL string) ([]etcd.Node, error)
}

// MemberRemover deletes a member from a live cluster.
type MemberRemover interface {
	RemoveMember(ctx context.Context, clientURL, id string) (int, error)
}

// MemberAdder adds a member to a live cluster.
type MemberAdder interface {
	AddMember(ctx context.Context, clientURL string, self etcd.Node) (int, error)
}

// AdminAPI is the subset of the etcd members API used by a bootstrap run.
type AdminAPI interface {
	MemberLister
	MemberRemover
	MemberAdder
}

// Logf is a printf-style sink.
type Logf func(format string, args ...any)

func discard(string, ...any) {}

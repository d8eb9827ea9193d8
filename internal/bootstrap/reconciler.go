package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/imamik/etcdseed/internal/etcd"
	"github.com/imamik/etcdseed/internal/util/retry"
)

// Orphans returns the live members that share no peer URL with any
// authoritative candidate, in live order.
func Orphans(authoritative, live []etcd.Node) []etcd.Node {
	var orphans []etcd.Node
	for _, member := range live {
		if !member.SharesPeerURL(authoritative) {
			orphans = append(orphans, member)
		}
	}
	return orphans
}

// Reconciler removes members that left the peer group from a live cluster.
type Reconciler struct {
	api       MemberRemover
	retryOpts []retry.Option
	metrics   *Metrics
	debugf    Logf
}

// NewReconciler creates a reconciler. retryOpts bound each member deletion.
func NewReconciler(api MemberRemover, metrics *Metrics, debugf Logf, retryOpts ...retry.Option) *Reconciler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if debugf == nil {
		debugf = discard
	}
	return &Reconciler{api: api, retryOpts: retryOpts, metrics: metrics, debugf: debugf}
}

// Reconcile deletes every orphan through the responder's client URL and
// returns the live membership without them. Deletions run one at a time;
// running out of retries on any orphan aborts the reconcile.
func (r *Reconciler) Reconcile(ctx context.Context, authoritative, live []etcd.Node, responder *etcd.Node) ([]etcd.Node, error) {
	r.debugf("[Reconcile] Looking for etcd members that are not part of the peer group")

	orphans := Orphans(authoritative, live)
	if len(orphans) == 0 {
		return append([]etcd.Node(nil), live...), nil
	}
	if responder == nil {
		return nil, fmt.Errorf("evict %d orphans: %w", len(orphans), ErrNoResponder)
	}

	for _, orphan := range orphans {
		if err := r.evict(ctx, responder.ClientURL(), orphan); err != nil {
			return nil, err
		}
	}

	survivors := make([]etcd.Node, 0, len(live)-len(orphans))
	for _, member := range live {
		if member.SharesPeerURL(authoritative) {
			survivors = append(survivors, member)
		}
	}
	return survivors, nil
}

func (r *Reconciler) evict(ctx context.Context, clientURL string, orphan etcd.Node) error {
	log.Printf("[Reconcile] Ejecting %s (%s) from the etcd cluster", orphan.ID, orphan.Name)

	err := retry.Fixed(ctx, func(attempt int) error {
		status, err := r.api.RemoveMember(ctx, clientURL, orphan.ID)
		r.metrics.recordAdminCall("remove", status)
		if err != nil {
			r.debugf("[Reconcile] Delete %s attempt %d failed: %v", orphan.ID, attempt, err)
			return err
		}
		switch status {
		case http.StatusNoContent, http.StatusGone:
			return nil
		default:
			r.debugf("[Reconcile] Delete %s attempt %d: status %d, retry", orphan.ID, attempt, status)
			return fmt.Errorf("unexpected status %d", status)
		}
	}, r.retryOpts...)
	if err != nil {
		return fmt.Errorf("too many retries trying to delete member %s from the cluster: %w", orphan.ID, err)
	}

	r.metrics.recordEviction()
	return nil
}

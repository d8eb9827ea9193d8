package bootstrap

import (
	"context"

	"github.com/imamik/etcdseed/internal/etcd"
)

// Prober looks for a live cluster among the candidates. It never changes
// cluster membership.
type Prober struct {
	api     MemberLister
	metrics *Metrics
	debugf  Logf
}

// NewProber creates a prober. A nil metrics or debugf is replaced with a
// no-op.
func NewProber(api MemberLister, metrics *Metrics, debugf Logf) *Prober {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if debugf == nil {
		debugf = discard
	}
	return &Prober{api: api, metrics: metrics, debugf: debugf}
}

// Probe asks each candidate in order for its membership list. The first
// candidate that answers wins and no further candidates are contacted.
// Candidates that fail are skipped; a result with Discovered=false is the
// normal outcome for the first node of a group.
func (p *Prober) Probe(ctx context.Context, candidates []etcd.Node) ProbeResult {
	for _, candidate := range candidates {
		clientURL := candidate.ClientURL()
		p.debugf("[Probe] Hunting for an etcd cluster at %s", clientURL)

		members, err := p.api.ListMembers(ctx, clientURL)
		if err != nil {
			p.metrics.recordProbe(false)
			p.debugf("[Probe] No etcd found on %s (%v)", clientURL, err)
			continue
		}
		p.metrics.recordProbe(true)
		p.debugf("[Probe] Found a cluster of %d at %s: %v", len(members), clientURL, members)

		result := ProbeResult{
			Discovered: true,
			QueriedURL: clientURL,
			Members:    members,
		}
		for i := range members {
			if members[i].HasClientURL(clientURL) {
				responder := members[i]
				result.Responder = &responder
				break
			}
		}
		if result.Responder == nil {
			p.debugf("[Probe] No reported member owns %s", clientURL)
		}
		return result
	}

	return ProbeResult{}
}

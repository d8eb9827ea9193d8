package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/imamik/etcdseed/internal/etcd"
	"github.com/imamik/etcdseed/internal/util/retry"
)

// Engine runs one bootstrap decision: found a new cluster or join the one
// the prober found. An Engine is single use.
type Engine struct {
	api        AdminAPI
	metrics    *Metrics
	debugf     Logf
	maxRetries int
	interval   time.Duration

	mu  sync.Mutex
	ran bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxRetries bounds the retries of every join and eviction call.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		e.maxRetries = n
	}
}

// WithRetryInterval sets the blocking wait between retries.
func WithRetryInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// WithMetrics records the run on m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithDebugf routes debug output to f.
func WithDebugf(f Logf) Option {
	return func(e *Engine) {
		e.debugf = f
	}
}

// NewEngine creates an engine that talks to the cluster through api.
func NewEngine(api AdminAPI, opts ...Option) *Engine {
	e := &Engine{
		api:        api,
		metrics:    NewMetrics(),
		debugf:     discard,
		maxRetries: 10,
		interval:   1 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metrics returns the metrics the engine records into.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Run probes candidates (which exclude self) and either joins the live
// cluster, after evicting orphans, or founds a new one.
func (e *Engine) Run(ctx context.Context, self etcd.Node, candidates []etcd.Node) (*ClusterState, error) {
	e.mu.Lock()
	if e.ran {
		e.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	e.ran = true
	e.mu.Unlock()

	start := time.Now()
	state, err := e.run(ctx, self, candidates)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		e.metrics.ObserveRun("error", elapsed, 0)
		return nil, err
	}
	e.metrics.ObserveRun(string(state.State), elapsed, len(state.Members))
	return state, nil
}

func (e *Engine) run(ctx context.Context, self etcd.Node, candidates []etcd.Node) (*ClusterState, error) {
	e.debugf("[Bootstrap] This node = %v, candidates = %v", self, candidates)

	prober := NewProber(e.api, e.metrics, e.debugf)
	probe := prober.Probe(ctx, candidates)

	if !probe.Discovered {
		return e.create(self, candidates), nil
	}

	if probe.Responder == nil {
		return nil, fmt.Errorf("cluster at %s: %w", probe.QueriedURL, ErrNoResponder)
	}

	reconciler := NewReconciler(e.api, e.metrics, e.debugf, e.retryOptions()...)
	survivors, err := reconciler.Reconcile(ctx, candidates, probe.Members, probe.Responder)
	if err != nil {
		return nil, err
	}

	if err := e.join(ctx, self, *probe.Responder); err != nil {
		return nil, err
	}

	members := survivors
	if !self.SharesPeerURL(members) {
		members = append(members, self)
	}

	return &ClusterState{
		Discovered:  true,
		Responder:   probe.Responder,
		LiveMembers: probe.Members,
		State:       StateExisting,
		Members:     members,
		Self:        self,
	}, nil
}

func (e *Engine) create(self etcd.Node, candidates []etcd.Node) *ClusterState {
	e.debugf("[Bootstrap] Creating a new cluster from %v", candidates)

	members := append([]etcd.Node(nil), candidates...)
	if !self.SharesPeerURL(members) {
		members = append(members, self)
	}

	log.Printf("[Bootstrap] No live cluster found, founding a new one with %d members", len(members))
	return &ClusterState{
		State:   StateNew,
		Members: members,
		Self:    self,
	}
}

func (e *Engine) join(ctx context.Context, self, responder etcd.Node) error {
	clientURL := responder.ClientURL()

	err := retry.Fixed(ctx, func(attempt int) error {
		status, err := e.api.AddMember(ctx, clientURL, self)
		e.metrics.recordAdminCall("add", status)
		if err != nil {
			e.debugf("[Join] Attempt %d against %s failed: %v", attempt, clientURL, err)
			return err
		}
		switch status {
		case http.StatusCreated, http.StatusConflict:
			return nil
		default:
			e.debugf("[Join] Attempt %d against %s: status %d, retry", attempt, clientURL, status)
			return fmt.Errorf("unexpected status %d", status)
		}
	}, e.retryOptions()...)
	if err != nil {
		return fmt.Errorf("too many retries trying to join the cluster at %s: %w", clientURL, err)
	}

	log.Printf("[Join] Joined cluster via %s (%s)", responder.Name, clientURL)
	return nil
}

func (e *Engine) retryOptions() []retry.Option {
	return []retry.Option{
		retry.WithMaxRetries(e.maxRetries),
		retry.WithInterval(e.interval),
	}
}

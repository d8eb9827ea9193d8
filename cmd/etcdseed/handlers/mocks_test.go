package handlers

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/etcdseed/internal/bootstrap"
	"github.com/imamik/etcdseed/internal/config"
	"github.com/imamik/etcdseed/internal/discovery"
	"github.com/imamik/etcdseed/internal/etcd"
	"github.com/imamik/etcdseed/internal/platform/s3"
)

type fakeProvider struct {
	identity *discovery.Identity
	err      error
	calls    int
}

func (f *fakeProvider) Discover(context.Context) (*discovery.Identity, error) {
	f.calls++
	return f.identity, f.err
}

type fakePublisher struct {
	domain  string
	members []etcd.Node
	err     error
	calls   int
}

func (f *fakePublisher) Publish(_ context.Context, domain string, members []etcd.Node) error {
	f.calls++
	f.domain = domain
	f.members = members
	return f.err
}

type fakeArchive struct {
	mu     sync.Mutex
	states map[string]*bootstrap.ClusterState
	err    error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{states: map[string]*bootstrap.ClusterState{}}
}

func (f *fakeArchive) Store(_ context.Context, state *bootstrap.ClusterState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.states[state.Self.Name] = state
	return nil
}

func (f *fakeArchive) Load(_ context.Context, name string) (*bootstrap.ClusterState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[name]
	if !ok {
		return nil, s3.ErrNotArchived
	}
	return state, nil
}

func (f *fakeArchive) Nodes(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.states {
		names = append(names, name)
	}
	return names, nil
}

// testEnv swaps every factory for a fake and restores them when the test ends.
type testEnv struct {
	cfg       *config.Config
	provider  *fakeProvider
	publisher *fakePublisher
	archive   *fakeArchive

	providerCalls  int
	publisherCalls int
	textfiles      []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Etcd.PeersFile = filepath.Join(t.TempDir(), "etcd-peers")
	cfg.Retry.MaxRetries = 2
	cfg.Retry.Interval = 5 * time.Millisecond
	cfg.Retry.ProbeTimeout = 200 * time.Millisecond

	env := &testEnv{
		cfg:       cfg,
		provider:  &fakeProvider{},
		publisher: &fakePublisher{},
		archive:   newFakeArchive(),
	}

	origLoad := loadConfig
	origProvider := newProvider
	origPublisher := newPublisher
	origArchive := newArchive
	origTextfile := writeTextfile
	origTerminal := isTerminal
	t.Cleanup(func() {
		loadConfig = origLoad
		newProvider = origProvider
		newPublisher = origPublisher
		newArchive = origArchive
		writeTextfile = origTextfile
		isTerminal = origTerminal
	})

	loadConfig = func(string) (*config.Config, error) {
		return env.cfg, nil
	}
	newProvider = func(context.Context, *config.Config) (discovery.Provider, error) {
		env.providerCalls++
		return env.provider, nil
	}
	newPublisher = func(context.Context, *config.Config) (discovery.Publisher, error) {
		env.publisherCalls++
		return env.publisher, nil
	}
	newArchive = func(context.Context, *config.Config) (StateArchive, error) {
		return env.archive, nil
	}
	writeTextfile = func(path string, g prometheus.Gatherer) error {
		env.textfiles = append(env.textfiles, path)
		return origTextfile(path, g)
	}
	isTerminal = func() bool { return false }

	return env
}

package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/imamik/etcdseed/internal/etcd"
)

// Call records one request received by FakeEtcd.
type Call struct {
	Method string
	Path   string
	Body   string
	At     time.Time
}

// FakeEtcd is an httptest server that implements the etcd v2 members API.
// Status sequences are consumed one per call; the last entry repeats.
type FakeEtcd struct {
	server *httptest.Server

	mu             sync.Mutex
	members        []etcd.Node
	rawList        string
	listStatus     int
	listDelay      time.Duration
	addStatuses    []int
	deleteStatuses map[string][]int
	calls          []Call
}

// NewFakeEtcd starts a fake members API that is closed when the test ends.
// By default it lists no members, accepts joins with 201 and deletes with 204.
func NewFakeEtcd(t *testing.T) *FakeEtcd {
	t.Helper()
	f := &FakeEtcd{
		listStatus:     http.StatusOK,
		addStatuses:    []int{http.StatusCreated},
		deleteStatuses: make(map[string][]int),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the client URL of the fake.
func (f *FakeEtcd) URL() string {
	return f.server.URL
}

// Candidate returns a candidate whose client URL points at the fake.
func (f *FakeEtcd) Candidate(name, peerIP string) etcd.Node {
	return NewNodeBuilder(name, peerIP).WithClientURLs(f.URL()).Build()
}

// Member returns a live member whose client URL points at the fake.
func (f *FakeEtcd) Member(id, name, peerIP string) etcd.Node {
	return NewNodeBuilder(name, peerIP).WithID(id).WithClientURLs(f.URL()).Build()
}

// SetMembers sets the membership returned by GET /v2/members.
func (f *FakeEtcd) SetMembers(members ...etcd.Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members = members
}

// SetRawList makes GET /v2/members return body verbatim.
func (f *FakeEtcd) SetRawList(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawList = body
}

// SetListStatus sets the status of GET /v2/members.
func (f *FakeEtcd) SetListStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listStatus = status
}

// SetListDelay delays GET /v2/members responses.
func (f *FakeEtcd) SetListDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listDelay = d
}

// SetAddStatuses sets the status sequence of POST /v2/members.
func (f *FakeEtcd) SetAddStatuses(statuses ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addStatuses = statuses
}

// SetDeleteStatuses sets the status sequence of DELETE /v2/members/{id}.
func (f *FakeEtcd) SetDeleteStatuses(id string, statuses ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteStatuses[id] = statuses
}

// Calls returns every request received so far.
func (f *FakeEtcd) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsFor returns the requests made with the given method.
func (f *FakeEtcd) CallsFor(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeEtcd) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: r.Method, Path: r.URL.Path, Body: string(body), At: time.Now()})
	delay := f.listDelay
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v2/members":
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		f.list(w)
	case r.Method == http.MethodPost && r.URL.Path == "/v2/members":
		f.mu.Lock()
		status := next(&f.addStatuses)
		f.mu.Unlock()
		w.WriteHeader(status)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/v2/members/"):
		id := strings.TrimPrefix(r.URL.Path, "/v2/members/")
		f.mu.Lock()
		status := http.StatusNoContent
		if seq, ok := f.deleteStatuses[id]; ok {
			status = next(&seq)
			f.deleteStatuses[id] = seq
		}
		f.mu.Unlock()
		w.WriteHeader(status)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeEtcd) list(w http.ResponseWriter) {
	f.mu.Lock()
	status, raw := f.listStatus, f.rawList
	members := append([]etcd.Node(nil), f.members...)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if raw != "" {
		_, _ = io.WriteString(w, raw)
		return
	}
	if members == nil {
		members = []etcd.Node{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"members": members})
}

func next(seq *[]int) int {
	s := *seq
	if len(s) == 0 {
		return http.StatusInternalServerError
	}
	status := s[0]
	if len(s) > 1 {
		*seq = s[1:]
	}
	return status
}

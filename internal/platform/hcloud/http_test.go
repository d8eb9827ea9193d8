package hcloud

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/etcdseed/internal/etcd"
	etcdtest "github.com/imamik/etcdseed/internal/testing"
)

// testServer creates an httptest server that can be used to mock Hetzner Cloud API responses.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testServer{server: server, mux: mux}
}

func (ts *testServer) client() *hcloud.Client {
	return hcloud.NewClient(
		hcloud.WithToken("test-token"),
		hcloud.WithEndpoint(ts.server.URL),
	)
}

// realClient returns a RealClient running as server selfID.
func (ts *testServer) realClient(selfID int64) *RealClient {
	return NewRealClient("test-token", "role=etcd", etcdtest.DefaultURLs,
		WithHCloudClient(ts.client()),
		WithMetadata(staticMetadata{id: selfID}),
		WithRetry(2, 10*time.Millisecond),
	)
}

func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

type staticMetadata struct {
	id  int64
	err error
}

func (m staticMetadata) InstanceID() (int64, error) {
	return m.id, m.err
}

// jsonResponse writes a JSON response with the given status code and body.
func jsonResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func privateServer(id int64, name, status, ip string) schema.Server {
	return schema.Server{
		ID:         id,
		Name:       name,
		Status:     status,
		PrivateNet: []schema.ServerPrivateNet{{Network: 1, IP: ip}},
	}
}

func TestRealClient_Discover(t *testing.T) {
	ts := newTestServer(t)

	self := privateServer(2, "etcd-2", "running", "10.0.0.2")
	ts.handleFunc("/servers/2", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerGetResponse{Server: self})
	})

	var selector atomic.Value
	ts.handleFunc("/servers", func(w http.ResponseWriter, r *http.Request) {
		selector.Store(r.URL.Query().Get("label_selector"))
		jsonResponse(w, http.StatusOK, schema.ServerListResponse{
			Servers: []schema.Server{
				privateServer(1, "etcd-1", "running", "10.0.0.1"),
				self,
				privateServer(3, "etcd-3", "off", "10.0.0.3"),
				{
					ID:     4,
					Name:   "etcd-4",
					Status: "running",
					PublicNet: schema.ServerPublicNet{
						IPv4: schema.ServerPublicNetIPv4{IP: "203.0.113.4"},
					},
				},
			},
		})
	})

	identity, err := ts.realClient(2).Discover(etcdtest.TestContext(t))
	require.NoError(t, err)

	assert.Equal(t, "role=etcd", selector.Load())
	assert.Equal(t, "role=etcd", identity.Group)
	assert.Equal(t, etcdtest.Candidate("etcd-2", "10.0.0.2"), identity.Self)
	assert.Equal(t, []etcd.Node{
		etcdtest.Candidate("etcd-1", "10.0.0.1"),
		etcdtest.Candidate("etcd-4", "203.0.113.4"),
	}, identity.Peers)
}

func TestRealClient_Discover_SelfNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.handleFunc("/servers/9", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusNotFound, schema.ErrorResponse{
			Error: schema.Error{Code: string(hcloud.ErrorCodeNotFound), Message: "server not found"},
		})
	})

	_, err := ts.realClient(9).Discover(etcdtest.TestContext(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server not found")
}

func TestRealClient_Discover_UnauthorizedIsNotRetried(t *testing.T) {
	ts := newTestServer(t)
	var calls atomic.Int32
	ts.handleFunc("/servers/2", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		jsonResponse(w, http.StatusUnauthorized, schema.ErrorResponse{
			Error: schema.Error{Code: string(hcloud.ErrorCodeUnauthorized), Message: "unable to authenticate"},
		})
	})

	_, err := ts.realClient(2).Discover(etcdtest.TestContext(t))

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRealClient_Discover_MetadataFailure(t *testing.T) {
	client := NewRealClient("test-token", "role=etcd", etcdtest.DefaultURLs,
		WithMetadata(staticMetadata{err: errors.New("no route to host")}),
	)

	_, err := client.Discover(etcdtest.TestContext(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata")
}

func TestServerIP(t *testing.T) {
	t.Run("no address", func(t *testing.T) {
		assert.Empty(t, serverIP(&hcloud.Server{Name: "bare"}))
	})
}

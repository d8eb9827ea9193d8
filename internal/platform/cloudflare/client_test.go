package cloudflare

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/etcdseed/internal/etcd"
	etcdtest "github.com/imamik/etcdseed/internal/testing"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient("test-token", WithHTTPClient(&http.Client{
		Transport: &rewriteTransport{base: srv.URL, wrapped: http.DefaultTransport},
	}))
}

func TestGetZoneID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "example.com" {
			t.Errorf("unexpected domain: %s", r.URL.Query().Get("name"))
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(apiResponse{
			Success: true,
			Result:  json.RawMessage(`[{"id":"zone-123"}]`),
		})
	}))
	defer srv.Close()

	id, err := newTestClient(srv).GetZoneID(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "zone-123" {
		t.Errorf("expected zone-123, got %s", id)
	}
}

func TestFindZoneID_WalksUpLabels(t *testing.T) {
	var asked []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		asked = append(asked, name)
		result := `[]`
		if name == "example.com" {
			result = `[{"id":"zone-123"}]`
		}
		json.NewEncoder(w).Encode(apiResponse{Success: true, Result: json.RawMessage(result)})
	}))
	defer srv.Close()

	id, err := newTestClient(srv).FindZoneID(context.Background(), "etcd.prod.example.com.")
	require.NoError(t, err)
	assert.Equal(t, "zone-123", id)
	assert.Equal(t, []string{"etcd.prod.example.com", "prod.example.com", "example.com"}, asked)
}

func TestFindZoneID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{
			Success: true,
			Result:  json.RawMessage(`[]`),
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FindZoneID(context.Background(), "notfound.com")
	if err == nil {
		t.Fatal("expected error for missing zone")
	}
}

func TestListDNSRecords_Pagination(t *testing.T) {
	callCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if r.URL.Query().Get("type") != "SRV" {
			t.Errorf("unexpected type filter: %s", r.URL.Query().Get("type"))
		}
		page := r.URL.Query().Get("page")
		var records []Record
		if page == "1" {
			records = []Record{{ID: "r1", Type: "SRV", Name: "_etcd-server._tcp.example.com"}}
		} else {
			records = []Record{{ID: "r2", Type: "SRV", Name: "_etcd-server._tcp.example.com"}}
		}
		json.NewEncoder(w).Encode(listResponse{
			Success:    true,
			Result:     records,
			ResultInfo: resultInfo{Page: callCount, TotalPages: 2},
		})
	}))
	defer srv.Close()

	records, err := newTestClient(srv).ListDNSRecords(context.Background(), "zone-123", "SRV", "_etcd-server._tcp.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

// fakeZone serves a single zone holding SRV records.
type fakeZone struct {
	mu      sync.Mutex
	records []Record
	deleted []string
	nextID  int
}

func (z *fakeZone) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	z.mu.Lock()
	defer z.mu.Unlock()

	parts := splitPath(r.URL.Path)
	switch {
	case r.Method == http.MethodGet && parts[len(parts)-1] == "zones":
		json.NewEncoder(w).Encode(apiResponse{Success: true, Result: json.RawMessage(`[{"id":"zone-1"}]`)})
	case r.Method == http.MethodGet:
		var matched []Record
		for _, rec := range z.records {
			if rec.Name == r.URL.Query().Get("name") && rec.Type == r.URL.Query().Get("type") {
				matched = append(matched, rec)
			}
		}
		json.NewEncoder(w).Encode(listResponse{Success: true, Result: matched, ResultInfo: resultInfo{Page: 1, TotalPages: 1}})
	case r.Method == http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var rec Record
		_ = json.Unmarshal(body, &rec)
		z.nextID++
		rec.ID = "new-" + string(rune('0'+z.nextID))
		z.records = append(z.records, rec)
		json.NewEncoder(w).Encode(apiResponse{Success: true, Result: json.RawMessage(`{}`)})
	case r.Method == http.MethodDelete:
		id := parts[len(parts)-1]
		z.deleted = append(z.deleted, id)
		kept := z.records[:0]
		for _, rec := range z.records {
			if rec.ID != id {
				kept = append(kept, rec)
			}
		}
		z.records = kept
		json.NewEncoder(w).Encode(apiResponse{Success: true, Result: json.RawMessage(`{}`)})
	}
}

func TestPublish_ReplacesRecordSets(t *testing.T) {
	zone := &fakeZone{records: []Record{
		{ID: "old-1", Type: "SRV", Name: "_etcd-server._tcp.example.com", TTL: 30, Data: &SRVData{Port: 2380, Target: "10.0.0.7"}},
		{ID: "other", Type: "A", Name: "www.example.com", Content: "1.2.3.4"},
	}}
	srv := httptest.NewServer(zone)
	defer srv.Close()

	members := []etcd.Node{
		etcdtest.LiveMember("a", "node-a", "10.0.0.1"),
		etcdtest.Candidate("node-b", "10.0.0.2"),
	}

	err := newTestClient(srv).Publish(context.Background(), "example.com", members)
	require.NoError(t, err)

	assert.Equal(t, []string{"old-1"}, zone.deleted)

	var server, client []SRVData
	for _, rec := range zone.records {
		switch rec.Name {
		case "_etcd-server._tcp.example.com":
			assert.Equal(t, 30, rec.TTL)
			server = append(server, *rec.Data)
		case "_etcd-client._tcp.example.com":
			client = append(client, *rec.Data)
		}
	}
	assert.Equal(t, []SRVData{{Port: 2380, Target: "10.0.0.1"}, {Port: 2380, Target: "10.0.0.2"}}, server)
	assert.Equal(t, []SRVData{{Port: 2379, Target: "10.0.0.1"}, {Port: 2379, Target: "10.0.0.2"}}, client)
}

func TestPublish_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(apiResponse{Success: false, Errors: []apiError{{Code: 9109, Message: "Unauthorized"}}})
	}))
	defer srv.Close()

	err := newTestClient(srv).Publish(context.Background(), "example.com", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "status 403"))
}

// rewriteTransport rewrites request URLs to point at the test server.
type rewriteTransport struct {
	base    string
	wrapped http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	req.URL.Host = t.base[len("http://"):]
	return t.wrapped.RoundTrip(req)
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

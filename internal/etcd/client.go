package etcd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const membersPath = "/v2/members"

// ErrMalformedResponse is returned when a members listing cannot be decoded
// into valid member descriptors.
var ErrMalformedResponse = errors.New("malformed members response")

// Client calls the etcd v2 members API. Every call targets an explicit
// client URL; the client itself holds no cluster state.
type Client struct {
	httpClient   *http.Client
	probeTimeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for all calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithProbeTimeout bounds a single ListMembers call.
func WithProbeTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.probeTimeout = d
	}
}

// NewClient creates a members API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:   http.DefaultClient,
		probeTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type membersResponse struct {
	Members *[]memberJSON `json:"members"`
}

type memberJSON struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	PeerURLs   []string `json:"peerURLs"`
	ClientURLs []string `json:"clientURLs"`
}

type addMemberRequest struct {
	Name       string   `json:"name"`
	PeerURLs   []string `json:"peerURLs"`
	ClientURLs []string `json:"clientURLs"`
}

// ListMembers queries GET /v2/members on clientURL.
func (c *Client) ListMembers(ctx context.Context, clientURL string) ([]Node, error) {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint(clientURL, membersPath), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list members: unexpected status %d", resp.StatusCode)
	}

	return DecodeMembers(body)
}

// DecodeMembers parses a members listing. Every member must carry an id and
// at least one peer URL. Name and client URLs may be empty for members that
// were added but have not started yet.
func DecodeMembers(body []byte) ([]Node, error) {
	var parsed membersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Members == nil {
		return nil, fmt.Errorf("%w: missing members field", ErrMalformedResponse)
	}

	nodes := make([]Node, 0, len(*parsed.Members))
	for i, m := range *parsed.Members {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: member %d has no id", ErrMalformedResponse, i)
		}
		if len(m.PeerURLs) == 0 {
			return nil, fmt.Errorf("%w: member %s has no peer URLs", ErrMalformedResponse, m.ID)
		}
		nodes = append(nodes, Node{
			ID:         m.ID,
			Name:       m.Name,
			PeerURLs:   append([]string(nil), m.PeerURLs...),
			ClientURLs: append([]string(nil), m.ClientURLs...),
		})
	}
	return nodes, nil
}

// AddMember posts self to POST /v2/members on clientURL and returns the
// HTTP status code. Status interpretation is left to the caller.
func (c *Client) AddMember(ctx context.Context, clientURL string, self Node) (int, error) {
	payload, err := json.Marshal(addMemberRequest{
		Name:       self.Name,
		PeerURLs:   self.PeerURLs,
		ClientURLs: self.ClientURLs,
	})
	if err != nil {
		return 0, fmt.Errorf("encode member: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(clientURL, membersPath), bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.status(req)
}

// RemoveMember calls DELETE /v2/members/{id} on clientURL and returns the
// HTTP status code.
func (c *Client) RemoveMember(ctx context.Context, clientURL, id string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint(clientURL, membersPath+"/"+id), nil)
	if err != nil {
		return 0, err
	}
	return c.status(req)
}

func (c *Client) status(req *http.Request) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func endpoint(clientURL, path string) string {
	return strings.TrimRight(clientURL, "/") + path
}

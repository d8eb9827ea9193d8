// Package cloudflare publishes etcd SRV records through the Cloudflare API.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/imamik/etcdseed/internal/discovery"
	"github.com/imamik/etcdseed/internal/etcd"
)

const baseURL = "https://api.cloudflare.com/client/v4"

// Client is a minimal Cloudflare API client for SRV record management.
// It implements discovery.Publisher.
type Client struct {
	apiToken   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Record represents a Cloudflare DNS record.
type Record struct {
	ID      string   `json:"id,omitempty"`
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Content string   `json:"content,omitempty"`
	TTL     int      `json:"ttl,omitempty"`
	Data    *SRVData `json:"data,omitempty"`
}

// SRVData is the structured content of an SRV record.
type SRVData struct {
	Priority int    `json:"priority"`
	Weight   int    `json:"weight"`
	Port     int    `json:"port"`
	Target   string `json:"target"`
}

type apiResponse struct {
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type zoneResult struct {
	ID string `json:"id"`
}

type resultInfo struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

type listResponse struct {
	Success    bool       `json:"success"`
	Errors     []apiError `json:"errors"`
	Result     []Record   `json:"result"`
	ResultInfo resultInfo `json:"result_info"`
}

// NewClient creates a new Cloudflare API client.
func NewClient(apiToken string, opts ...Option) *Client {
	c := &Client{
		apiToken:   apiToken,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Publish replaces the etcd server and client SRV record sets under domain
// with one record per member.
func (c *Client) Publish(ctx context.Context, domain string, members []etcd.Node) error {
	zoneID, err := c.FindZoneID(ctx, domain)
	if err != nil {
		return err
	}

	for _, set := range discovery.SRVRecords(domain, members) {
		if err := c.replaceSRV(ctx, zoneID, set); err != nil {
			return err
		}
		log.Printf("[Cloudflare] Published %s with %d targets", set.Name, len(set.Targets))
	}
	return nil
}

func (c *Client) replaceSRV(ctx context.Context, zoneID string, set discovery.SRVRecordSet) error {
	existing, err := c.ListDNSRecords(ctx, zoneID, "SRV", set.Name)
	if err != nil {
		return fmt.Errorf("list records for %s: %w", set.Name, err)
	}
	for _, r := range existing {
		if err := c.DeleteDNSRecord(ctx, zoneID, r.ID); err != nil {
			return err
		}
	}
	for _, t := range set.Targets {
		record := Record{
			Type: "SRV",
			Name: set.Name,
			TTL:  discovery.RecordTTL,
			Data: &SRVData{Port: t.Port, Target: t.Host},
		}
		if err := c.CreateDNSRecord(ctx, zoneID, record); err != nil {
			return err
		}
	}
	return nil
}

// FindZoneID returns the ID of the zone that holds domain, walking up the
// labels of domain until a zone matches.
func (c *Client) FindZoneID(ctx context.Context, domain string) (string, error) {
	name := strings.TrimSuffix(domain, ".")
	for strings.Contains(name, ".") {
		id, err := c.GetZoneID(ctx, name)
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}
		name = name[strings.Index(name, ".")+1:]
	}
	return "", fmt.Errorf("no zone found for domain %s", domain)
}

// GetZoneID returns the zone ID for the given zone name, or "" when no
// such zone exists.
func (c *Client) GetZoneID(ctx context.Context, zone string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/zones?name="+url.QueryEscape(zone), nil)
	if err != nil {
		return "", err
	}

	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("get zone ID: %w", err)
	}

	var zones []zoneResult
	if err := json.Unmarshal(resp.Result, &zones); err != nil {
		return "", fmt.Errorf("parse zones: %w", err)
	}

	if len(zones) == 0 {
		return "", nil
	}

	return zones[0].ID, nil
}

// ListDNSRecords returns the records of the given type and name in the zone.
func (c *Client) ListDNSRecords(ctx context.Context, zoneID, recordType, name string) ([]Record, error) {
	var all []Record
	page := 1

	query := url.Values{}
	query.Set("type", recordType)
	query.Set("name", name)
	query.Set("per_page", "100")

	for {
		query.Set("page", fmt.Sprint(page))
		req, err := c.newRequest(ctx, http.MethodGet,
			fmt.Sprintf("/zones/%s/dns_records?%s", zoneID, query.Encode()), nil)
		if err != nil {
			return nil, err
		}

		var resp listResponse
		if err := c.do(req, &resp); err != nil {
			return nil, fmt.Errorf("list DNS records page %d: %w", page, err)
		}

		all = append(all, resp.Result...)

		if page >= resp.ResultInfo.TotalPages {
			break
		}
		page++
	}

	return all, nil
}

// CreateDNSRecord creates a DNS record in the zone.
func (c *Client) CreateDNSRecord(ctx context.Context, zoneID string, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/zones/%s/dns_records", zoneID), bytes.NewReader(payload))
	if err != nil {
		return err
	}

	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return fmt.Errorf("create %s record %s: %w", record.Type, record.Name, err)
	}

	return nil
}

// DeleteDNSRecord deletes a DNS record by ID.
func (c *Client) DeleteDNSRecord(ctx context.Context, zoneID, recordID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete,
		fmt.Sprintf("/zones/%s/dns_records/%s", zoneID, recordID), nil)
	if err != nil {
		return err
	}

	var resp apiResponse
	if err := c.do(req, &resp); err != nil {
		return fmt.Errorf("delete DNS record %s: %w", recordID, err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

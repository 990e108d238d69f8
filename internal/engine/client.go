// Package engine is the HTTP client for the external network-analysis
// engine. The engine owns config parsing, topology computation, and snapshot
// storage; this client only consumes its read-only topology query surface.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"topoview/internal/domain"
)

// NodeRecord is a device row from GET /topology/nodes.
type NodeRecord struct {
	Hostname        string `json:"hostname"`
	DeviceType      string `json:"device_type"`
	Vendor          string `json:"vendor"`
	Model           string `json:"model"`
	ConfigFormat    string `json:"config_format"`
	InterfacesCount int    `json:"interfaces_count"`
}

// EdgeRecord is a Layer 3 link row from GET /topology/edges.
type EdgeRecord struct {
	SourceHostname  string `json:"source_hostname"`
	TargetHostname  string `json:"target_hostname"`
	SourceInterface string `json:"source_interface"`
	TargetInterface string `json:"target_interface"`
	SourceIP        string `json:"source_ip,omitempty"`
	TargetIP        string `json:"target_ip,omitempty"`
	Protocol        string `json:"protocol,omitempty"`
}

// Client queries the analysis engine's REST API.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// NewClient creates a client for the engine API at baseURL. A zero timeout
// disables the client-side deadline; cancellation then comes only from the
// caller's context.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "engine").Logger(),
	}
}

// Nodes returns all devices in the snapshot.
func (c *Client) Nodes(ctx context.Context, snapshot, network string) ([]NodeRecord, error) {
	var nodes []NodeRecord
	if err := c.get(ctx, "/topology/nodes", snapshot, network, nil, &nodes); err != nil {
		return nil, err
	}
	c.log.Debug().Str("snapshot", snapshot).Int("count", len(nodes)).Msg("fetched topology nodes")
	return nodes, nil
}

// Edges returns all Layer 3 links in the snapshot.
func (c *Client) Edges(ctx context.Context, snapshot, network string) ([]EdgeRecord, error) {
	var edges []EdgeRecord
	if err := c.get(ctx, "/topology/edges", snapshot, network, nil, &edges); err != nil {
		return nil, err
	}
	c.log.Debug().Str("snapshot", snapshot).Int("count", len(edges)).Msg("fetched topology edges")
	return edges, nil
}

// NodeDetail returns the aggregated detail for one device. The request is
// issued with the caller's context so it can be aborted mid-flight; the
// detail panel cancels these on rapid node switching.
func (c *Client) NodeDetail(ctx context.Context, hostname, snapshot, network string) (*domain.NodeDetail, error) {
	var detail domain.NodeDetail
	path := "/topology/nodes/" + url.PathEscape(hostname) + "/details"
	if err := c.get(ctx, path, snapshot, network, nil, &detail); err != nil {
		return nil, err
	}
	if err := detail.Validate(); err != nil {
		return nil, &FetchError{URL: c.baseURL + path, Err: err}
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, path, snapshot, network string, extra url.Values, out interface{}) error {
	q := url.Values{}
	q.Set("snapshot", snapshot)
	q.Set("network", network)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	u := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		// Context cancellation propagates as-is so callers can tell an
		// aborted request apart from a network failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{URL: u, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{URL: u, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

// Package jsonbin is the document store adapter for the jsonbin.io v3 API.
package jsonbin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"registro/internal/binstore"
	"registro/internal/core"
)

const DefaultBaseURL = "https://api.jsonbin.io/v3"

// Client talks to jsonbin with the account access key. Responses beyond
// success/failure are not consumed on save; loads return the raw document
// for tolerant parsing upstream.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ binstore.Store = (*Client)(nil)

// New creates a jsonbin client. baseURL defaults to the public API.
func New(baseURL, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing jsonbin api key")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    newPooledHTTPClient(),
	}, nil
}

// newPooledHTTPClient mirrors the connection settings used for the other
// upstream APIs: pooling, keep-alive, and bounded timeouts.
func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// Load fetches the latest document for a bin. A bin that does not exist
// yields (nil, nil); the caller starts from an empty ledger.
func (c *Client) Load(ctx context.Context, binID string) (json.RawMessage, error) {
	if strings.TrimSpace(binID) == "" {
		return nil, errors.New("missing bin id")
	}
	endpoint := c.baseURL + "/b/" + url.PathEscape(binID) + "/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build load request: %w", err)
	}
	req.Header.Set("X-Access-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load bin %s: %w", binID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load bin %s: upstream status %d", binID, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read bin %s: %w", binID, err)
	}
	return body, nil
}

// Save replaces the bin's document. The response body is drained but only
// the status code matters.
func (c *Client) Save(ctx context.Context, binID string, doc core.Document) error {
	if strings.TrimSpace(binID) == "" {
		return errors.New("missing bin id")
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	endpoint := c.baseURL + "/b/" + url.PathEscape(binID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("save bin %s: %w", binID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("save bin %s: upstream status %d", binID, resp.StatusCode)
	}
	return nil
}

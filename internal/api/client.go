package api

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
	"strconv"
	"strings"
	"time"
)

// Error is a non-2xx response from the daemon.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running daemon over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the daemon listening on bind. Wildcard hosts
// are dialed on loopback.
func NewClient(bind, token string) *Client {
	return &Client{
		baseURL: BaseURL(bind),
		token:   strings.TrimSpace(token),
		http:    &http.Client{},
	}
}

// BaseURL turns a listen address into a URL a local client can reach.
func BaseURL(bind string) string {
	bind = strings.TrimSpace(bind)
	if strings.HasPrefix(bind, "http://") || strings.HasPrefix(bind, "https://") {
		return strings.TrimRight(bind, "/")
	}
	host, port, err := net.SplitHostPort(bind)
	if err != nil {
		return "http://" + bind
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Status fetches daemon status.
func (c *Client) Status(ctx context.Context) (*DaemonStatus, error) {
	var resp DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &resp, 5*time.Second); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unlock force-releases the run lock.
func (c *Client) Unlock(ctx context.Context) (*UnlockResponse, error) {
	var resp UnlockResponse
	if err := c.do(ctx, http.MethodPost, "/unlock", nil, nil, &resp, 5*time.Second); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Paths scans the daemon's configured roots.
func (c *Client) Paths(ctx context.Context) (*PathsResponse, error) {
	var resp PathsResponse
	if err := c.do(ctx, http.MethodGet, "/paths", nil, nil, &resp, 0); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Runs lists recent runs.
func (c *Client) Runs(ctx context.Context, limit int) (*RunsResponse, error) {
	path := "/api/runs"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var resp RunsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp, 5*time.Second); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sync runs a synchronization on the daemon and waits for it to finish.
func (c *Client) Sync(ctx context.Context, req SyncRequest, headers SyncHeaders) (*SyncResponse, error) {
	var resp SyncResponse
	if err := c.do(ctx, http.MethodPost, "/sync", req, headers.Apply, &resp, 0); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, decorate func(http.Header), out any, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if decorate != nil {
		decorate(req.Header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload ErrorResponse
		if jsonErr := json.Unmarshal(data, &payload); jsonErr == nil && payload.Error != "" {
			return &Error{StatusCode: resp.StatusCode, Message: payload.Error}
		}
		return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsUnavailable reports whether err means no daemon answered.
func IsUnavailable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return false
	}
	var netErr net.Error
	var opErr *net.OpError
	return errors.As(err, &opErr) || errors.As(err, &netErr)
}

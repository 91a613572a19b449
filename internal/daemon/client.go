package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/model"
)

const (
	requestTimeout = 2 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrUnavailable indicates no daemon answered at the address.
	ErrUnavailable = errors.New("daemon: not reachable")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("daemon: not found")
)

// Client talks to a running daemon's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the daemon listening on addr
// ("host:port" or a full http URL). Returns nil if addr is empty.
func NewClient(addr string) *Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{},
	}
}

// BaseURL is the root the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

// Healthy reports whether the daemon answers its health probe.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.do(ctx, http.MethodGet, "/healthz")
	return err == nil
}

// Status fetches the runtime status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	body, err := c.do(ctx, http.MethodGet, "/v1/status")
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return st, fmt.Errorf("daemon: parsing status: %w", err)
	}
	return st, nil
}

// Notifications lists stored notifications. filter is "", "all", "unread" or "read".
func (c *Client) Notifications(ctx context.Context, filter string) ([]model.Notification, error) {
	path := "/v1/notifications"
	if filter != "" {
		path += "?filter=" + url.QueryEscape(filter)
	}
	body, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	var list []model.Notification
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("daemon: parsing notifications: %w", err)
	}
	return list, nil
}

// Events returns the buffered event history.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/events")
	if err != nil {
		return nil, err
	}
	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("daemon: parsing events: %w", err)
	}
	return events, nil
}

// MarkRead marks one notification read through the daemon.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/notifications/"+strconv.FormatInt(id, 10)+"/read")
	return err
}

// do performs a request and returns the response body.
func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("daemon: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fintrack/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("daemon: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, apiError(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("daemon: HTTP %d: %s", resp.StatusCode, apiError(body))
	}
	return body, nil
}

// apiError extracts the message from an {"error": ...} body.
func apiError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// Package upstream is a read-only client for the external time-tracking
// service (Kimai-compatible REST API). It fetches customers ("clients") and
// projects, filters out hidden items, and sorts them by name.
package upstream

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/pkordes/haul-slips/internal/domain"
)

// Timeout bounds every upstream call, including reading the response body.
const Timeout = 10 * time.Second

// AuthMode selects how the client authenticates.
type AuthMode string

const (
	// AuthToken sends "Authorization: Bearer <token>".
	AuthToken AuthMode = "token"
	// AuthXAuth sends the X-AUTH-USER / X-AUTH-TOKEN header pair.
	AuthXAuth AuthMode = "xauth"
)

// Resource names, used in errors, logs, and metrics.
const (
	ResourceClients  = "clients"
	ResourceProjects = "projects"
)

// Config holds the connection settings for the upstream service.
type Config struct {
	BaseURL  string
	Token    string
	Username string
	Mode     AuthMode
}

// Client fetches lookup data from the upstream service. It holds no state
// beyond its configuration and is safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client. The Timeout constant is
// still enforced through the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New constructs a Client. An incomplete configuration is not an error here;
// each call reports domain.ErrNotConfigured instead.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Mode == "" {
		cfg.Mode = AuthToken
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	c := &Client{cfg: cfg, http: &http.Client{Timeout: Timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckConfig returns domain.ErrNotConfigured unless the client has every
// setting its auth mode needs.
func (c *Client) CheckConfig() error {
	var missing []string
	if c.cfg.BaseURL == "" {
		missing = append(missing, "base URL")
	}
	if c.cfg.Token == "" {
		missing = append(missing, "API token")
	}
	if c.cfg.Mode == AuthXAuth && c.cfg.Username == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// Clients returns the visible customers, sorted by name.
func (c *Client) Clients(ctx context.Context) ([]domain.LookupItem, error) {
	items, err := c.list(ctx, ResourceClients, "/api/customers", nil)
	if err != nil {
		return nil, fmt.Errorf("upstream.Client.Clients: %w", err)
	}
	return items, nil
}

// Projects returns the visible projects of the given customer, sorted by name.
func (c *Client) Projects(ctx context.Context, clientID string) ([]domain.LookupItem, error) {
	items, err := c.list(ctx, ResourceProjects, "/api/projects", url.Values{"customer": {clientID}})
	if err != nil {
		return nil, fmt.Errorf("upstream.Client.Projects: %w", err)
	}
	return items, nil
}

// item is the subset of the upstream customer/project representation we read.
type item struct {
	ID      int64   `json:"id"`
	Name    *string `json:"name"`
	Visible *bool   `json:"visible"`
}

func (c *Client) list(ctx context.Context, resource, path string, query url.Values) ([]domain.LookupItem, error) {
	if err := c.CheckConfig(); err != nil {
		return nil, err
	}

	// The call runs to completion or timeout even if the caller goes away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), Timeout)
	defer cancel()

	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Resource: resource, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	c.authenticate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Resource: resource, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &domain.UpstreamError{Resource: resource, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	var raw []item
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &domain.UpstreamError{Resource: resource, Err: fmt.Errorf("decode response: %w", err)}
	}
	return normalize(raw), nil
}

func (c *Client) authenticate(req *http.Request) {
	switch c.cfg.Mode {
	case AuthXAuth:
		req.Header.Set("X-AUTH-USER", c.cfg.Username)
		req.Header.Set("X-AUTH-TOKEN", c.cfg.Token)
	default:
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
}

// normalize drops items explicitly marked not visible and sorts the rest by
// name, case-insensitively. Equal names keep their upstream order.
func normalize(raw []item) []domain.LookupItem {
	out := make([]domain.LookupItem, 0, len(raw))
	for _, it := range raw {
		if it.Visible != nil && !*it.Visible {
			continue
		}
		var name string
		if it.Name != nil {
			name = *it.Name
		}
		out = append(out, domain.LookupItem{ID: it.ID, Name: name})
	}
	slices.SortStableFunc(out, func(a, b domain.LookupItem) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

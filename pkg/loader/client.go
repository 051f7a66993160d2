// Package loader fetches the cloud payload and post details over HTTP and
// sends project view pings.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/recera/mindcloud/pkg/graph"
)

// ErrStatus is returned, wrapped, when the server answers with a non-2xx status.
var ErrStatus = errors.New("unexpected status")

// Endpoint paths, relative to the base URL.
const (
	GraphPath = "/api/mind-cloud"
	PostPath  = "/api/posts/"
	ViewPath  = "/api/projects/%s/view"
)

// Client talks to the content API. Requests are never retried.
type Client struct {
	base    string
	http    *http.Client
	log     *zap.Logger
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithViewRate limits view pings to r per second with the given burst.
// Pings over the limit are dropped.
func WithViewRate(r float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
	}
}

// New returns a client for the API rooted at baseURL. An empty baseURL
// issues requests relative to the current origin, which is what the
// browser build wants.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     zap.NewNop(),
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("loader")
	return c
}

// FetchGraph performs the one-shot payload fetch.
func (c *Client) FetchGraph(ctx context.Context) (*graph.Payload, error) {
	resp, err := c.get(ctx, c.base+GraphPath)
	if err != nil {
		return nil, fmt.Errorf("fetch graph: %w", err)
	}
	defer resp.Body.Close()

	p, err := graph.DecodePayload(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch graph: %w", err)
	}
	c.log.Debug("graph fetched", zap.Int("nodes", len(p.Nodes)), zap.Int("links", len(p.Links)))
	return p, nil
}

// FetchPost fetches the detail record for a post slug.
func (c *Client) FetchPost(ctx context.Context, slug string) (*graph.PayloadNode, error) {
	resp, err := c.get(ctx, c.base+PostPath+url.PathEscape(slug))
	if err != nil {
		return nil, fmt.Errorf("fetch post %q: %w", slug, err)
	}
	defer resp.Body.Close()

	var n graph.PayloadNode
	if err := json.NewDecoder(resp.Body).Decode(&n); err != nil {
		return nil, fmt.Errorf("fetch post %q: decode: %w", slug, err)
	}
	return &n, nil
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: %d", ErrStatus, u, resp.StatusCode)
	}
	return resp, nil
}

// TrackView posts a view for a project without waiting for the result.
// Failures are logged at debug level and otherwise ignored. Pings beyond the
// configured rate are dropped and TrackView reports false.
func (c *Client) TrackView(projectID string) bool {
	if projectID == "" || !c.limiter.Allow() {
		return false
	}
	u := c.base + fmt.Sprintf(ViewPath, url.PathEscape(projectID))
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		req, err := http.NewRequest(http.MethodPost, u, nil)
		if err != nil {
			c.log.Debug("view ping", zap.String("project", projectID), zap.Error(err))
			return
		}
		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Debug("view ping", zap.String("project", projectID), zap.Error(err))
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			c.log.Debug("view ping", zap.String("project", projectID), zap.Int("status", resp.StatusCode))
		}
	}()
	return true
}

// Wait blocks until every in-flight view ping has finished.
func (c *Client) Wait() { c.wg.Wait() }

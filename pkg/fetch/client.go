package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/matzehuels/claimgraph/pkg/cache"
	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/observability"
)

// Source supplies raw graph payloads. Implementations must be safe for
// concurrent use.
type Source interface {
	// Graph returns the graph rooted at uri, or the default graph when uri
	// is empty.
	Graph(ctx context.Context, uri string) ([]byte, error)

	// Neighbors returns page (1-based) of nodeID's neighbours.
	Neighbors(ctx context.Context, nodeID string, page, limit int) ([]byte, error)

	// ClaimGraph returns the graph around a single claim.
	ClaimGraph(ctx context.Context, claimID string) ([]byte, error)

	// ExpandClaim returns page of the graph around a claim node.
	ExpandClaim(ctx context.Context, claimID string, page, limit int) ([]byte, error)
}

// Defaults for [NewClient].
const (
	DefaultTimeout  = 15 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
	DefaultCacheTTL = time.Hour
	maxBodyBytes    = 16 << 20
)

// Client is the HTTP implementation of [Source].
type Client struct {
	base     *url.URL
	http     *http.Client
	token    string
	attempts int
	delay    time.Duration
	limiter  *rate.Limiter
	cache    cache.Cache
	keyer    cache.Keyer
	cacheTTL time.Duration
	logger   *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetry sets the attempt count and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.delay = delay
	}
}

// WithRateLimit allows rps requests per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithCache enables read-through caching of initial graph payloads.
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for retries and cache failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := errs.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid base URL")
	}

	host := base.Host
	c := &Client{
		base:     base,
		http:     &http.Client{Timeout: DefaultTimeout},
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
		cache:    cache.NewNullCache(),
		keyer:    cache.NewScopedKeyer(nil, host+":"),
		cacheTTL: DefaultCacheTTL,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Graph implements [Source].
func (c *Client) Graph(ctx context.Context, uri string) ([]byte, error) {
	path := "/api/graph"
	if uri != "" {
		path += "/" + url.PathEscape(uri)
	}
	return c.cached(ctx, c.keyer.GraphKey("uri", uri), path, nil)
}

// ClaimGraph implements [Source].
func (c *Client) ClaimGraph(ctx context.Context, claimID string) ([]byte, error) {
	if err := errs.ValidateID(claimID); err != nil {
		return nil, err
	}
	path := "/api/claim_graph/" + url.PathEscape(claimID)
	return c.cached(ctx, c.keyer.GraphKey("claim", claimID), path, nil)
}

// Neighbors implements [Source]. Pages are never cached.
func (c *Client) Neighbors(ctx context.Context, nodeID string, page, limit int) ([]byte, error) {
	if err := errs.ValidateID(nodeID); err != nil {
		return nil, err
	}
	path := "/api/graph/node/" + url.PathEscape(nodeID) + "/neighbors"
	return c.get(ctx, path, pageQuery(page, limit))
}

// ExpandClaim implements [Source]. Pages are never cached.
func (c *Client) ExpandClaim(ctx context.Context, claimID string, page, limit int) ([]byte, error) {
	if err := errs.ValidateID(claimID); err != nil {
		return nil, err
	}
	path := "/api/claim_graph/" + url.PathEscape(claimID) + "/expand"
	return c.get(ctx, path, pageQuery(page, limit))
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// cached serves key from the cache or fetches and stores it. Cache
// failures are logged and otherwise ignored.
func (c *Client) cached(ctx context.Context, key, path string, q url.Values) ([]byte, error) {
	hooks := observability.Cache()
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "err", err)
	}
	if hit {
		hooks.OnCacheHit(ctx, "graph")
		return data, nil
	}
	hooks.OnCacheMiss(ctx, "graph")

	data, err = c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		hooks.OnCacheSet(ctx, "graph", len(data))
	}
	return data, nil
}

// get performs a GET with retries and returns the body. path must already
// be escaped.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	target := c.base.String() + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var body []byte
	attempt := 0
	err := Retry(ctx, c.attempts, c.delay, func() error {
		attempt++
		if attempt > 1 {
			c.logger.Debug("retrying request", "url", target, "attempt", attempt)
		}
		var err error
		body, err = c.do(ctx, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	hooks := observability.Fetch()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	return data, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &errs.RateLimitedError{RetryAfter: retryAfter}
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrBadRequest, code)
	}
}

var _ Source = (*Client)(nil)

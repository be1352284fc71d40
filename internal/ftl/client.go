package ftl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pistekit/ftlexport/internal/config"
)

// Client fetches the FencingTimeLive endpoints that return server-rendered
// fragments: pool detail tables, tableau tree listings, and bracket tables.
// These endpoints are the same XHR calls the site's own pages make, so no
// browser is needed for them.
//
// All requests share one rate limiter with the intent that an export never
// hammers the site, and failed fetches retry with quadratic backoff.
type Client struct {
	// httpClient performs the actual requests. Its transport injects the
	// configured User-Agent into every request.
	httpClient *http.Client

	// baseURL is the site origin all endpoint paths are appended to.
	baseURL string

	// limiter caps request frequency across all calls on this client.
	limiter *rate.Limiter

	// maxRetries is how many times a retryable failure is attempted again.
	maxRetries int

	// retryBackoff is the base backoff unit; attempt n waits n*n times it.
	retryBackoff time.Duration

	// maxBodySize caps how many response bytes are read.
	maxBodySize int64
}

// Tree identifies one bracket tree of a direct elimination round, as
// returned by the trees endpoint. Large events split their bracket into
// several trees.
type Tree struct {
	// GUID identifies the tree within its round.
	GUID string `json:"guid"`

	// NumTables is how many bracket tables the tree spans.
	NumTables int `json:"numTables"`
}

// NewClient creates a client for the fragment endpoints using the
// configured base URL, user agent, rate limit, and retry policy.
func NewClient(cfg *config.Config) *Client {
	maxBodySize := cfg.MaxBodySize
	if maxBodySize == 0 {
		maxBodySize = config.DefaultMaxBodySize
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &userAgentTransport{
				base:      http.DefaultTransport,
				userAgent: cfg.UserAgent,
			},
		},
		baseURL:      cfg.BaseURL,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		maxBodySize:  maxBodySize,
	}
}

// BaseURL returns the configured site origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchPoolHTML fetches the rendered table fragment for one pool.
func (c *Client) FetchPoolHTML(ctx context.Context, eventID, roundID, poolGUID string) (string, error) {
	body, err := c.Get(ctx, PoolDetailsURL(c.baseURL, eventID, roundID, poolGUID))
	if err != nil {
		return "", fmt.Errorf("failed to fetch pool %s: %w", poolGUID, err)
	}
	return string(body), nil
}

// FetchTrees fetches the bracket tree listing for a direct elimination
// round. An empty slice means the round has no published bracket yet.
func (c *Client) FetchTrees(ctx context.Context, eventID, roundID string) ([]Tree, error) {
	treesURL := TreesURL(c.baseURL, eventID, roundID)

	body, err := c.Get(ctx, treesURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tableau trees: %w", err)
	}

	var trees []Tree
	if err := json.Unmarshal(body, &trees); err != nil {
		return nil, fmt.Errorf("failed to decode tableau trees from %s: %w", treesURL, err)
	}

	return trees, nil
}

// FetchTableHTML fetches the rendered bracket HTML for one tree.
func (c *Client) FetchTableHTML(ctx context.Context, eventID, roundID string, tree Tree) (string, error) {
	body, err := c.Get(ctx, TreeTablesURL(c.baseURL, eventID, roundID, tree.GUID, tree.NumTables))
	if err != nil {
		return "", fmt.Errorf("failed to fetch tableau tree %s: %w", tree.GUID, err)
	}
	return string(body), nil
}

// Get fetches a URL, retrying transient failures. Network errors, HTTP 429,
// and 5xx responses retry with quadratic backoff; other non-200 statuses
// fail immediately since retrying cannot change them.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err

		if attempt <= c.maxRetries {
			backoff := time.Duration(attempt*attempt) * c.retryBackoff
			if err := sleepContext(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w for %s: %w", ErrRetriesExhausted, url, lastErr)
}

// fetch performs one GET attempt. The retryable result tells Get whether
// another attempt could succeed.
func (c *Client) fetch(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Close error on read path is not actionable

	if resp.StatusCode != http.StatusOK {
		return nil, retryableStatus(resp.StatusCode),
			fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	return data, false, nil
}

// retryableStatus reports whether a status code is worth retrying.
// 429 means slow down; 5xx means the site hiccuped.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// sleepContext sleeps for the given duration unless the context ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// userAgentTransport wraps an http.RoundTripper to inject the configured
// User-Agent into every request, including redirects.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clone := req.Clone(req.Context())

	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}

	return t.base.RoundTrip(clone)
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jafarshop/feedshop/internal/config"
)

const (
	resourceProducts = "products"
	resourcePosts    = "posts"
	resourceShops    = "shops"
	resourceUsers    = "users"
)

// errNotFound marks a 404 from the upstream; it is "no data", not a failure
var errNotFound = errors.New("upstream resource not found")

// Client fetches and normalizes data from the remote product, post, shop and
// user APIs. Failures never escape as errors; see Result.
type Client struct {
	baseURLs   map[string]string
	httpClient *http.Client
	breakers   map[string]*gobreaker.CircuitBreaker[[]byte]
	inflight   singleflight.Group
	norm       normalizer
	logger     *zap.Logger
}

// NewClient creates a catalog client with one circuit breaker per upstream
func NewClient(upstream config.UpstreamConfig, catalog config.CatalogConfig, logger *zap.Logger) *Client {
	c := &Client{
		baseURLs: map[string]string{
			resourceProducts: normalizeBaseURL(upstream.ProductsURL),
			resourcePosts:    normalizeBaseURL(upstream.PostsURL),
			resourceShops:    normalizeBaseURL(upstream.ShopsURL),
			resourceUsers:    normalizeBaseURL(upstream.UsersURL),
		},
		httpClient: &http.Client{
			Timeout:   upstream.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
		norm:     newNormalizer(catalog),
		logger:   logger,
	}

	maxFailures := upstream.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	for resource := range c.baseURLs {
		c.breakers[resource] = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    resource,
			Timeout: upstream.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errNotFound) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Upstream circuit breaker state changed",
					zap.String("upstream", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}

	return c
}

func normalizeBaseURL(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), "/")
}

// endpoint joins already-escaped path segments onto the resource base URL
func (c *Client) endpoint(resource string, query url.Values, segments ...string) (string, error) {
	u, err := url.Parse(c.baseURLs[resource])
	if err != nil {
		return "", fmt.Errorf("invalid %s base URL: %w", resource, err)
	}
	u = u.JoinPath(segments...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// get performs a GET through the resource breaker. Identical concurrent
// requests share one round trip when coalesce is set; the shared round trip
// is detached from any single caller's cancellation and each caller stops
// waiting when its own ctx ends.
func (c *Client) get(ctx context.Context, resource, rawURL string, coalesce bool) ([]byte, error) {
	do := func(ctx context.Context) ([]byte, error) {
		return c.breakers[resource].Execute(func() ([]byte, error) {
			return c.roundTrip(ctx, rawURL)
		})
	}

	if !coalesce {
		return do(ctx)
	}

	ch := c.inflight.DoChan(rawURL, func() (interface{}, error) {
		return do(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("Upstream request coalesced", zap.String("url", rawURL))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) roundTrip(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream error: status %d, body: %s", resp.StatusCode, truncate(string(body), 256))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// payload fetches rawURL and unwraps the envelope. A nil payload with a nil
// error means the upstream had no data.
func (c *Client) payload(ctx context.Context, resource, rawURL string, coalesce bool) (json.RawMessage, error) {
	body, err := c.get(ctx, resource, rawURL, coalesce)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := unwrapEnvelope(body)
	if err != nil {
		return nil, err
	}
	if isEmptyPayload(data) {
		return nil, nil
	}
	return data, nil
}

func (c *Client) logFailure(resource, rawURL string, err error) {
	c.logger.Warn("Upstream fetch failed",
		zap.String("resource", resource),
		zap.String("url", rawURL),
		zap.Error(err),
	)
}

// fetchList fetches a collection and normalizes each element
func fetchList[R any, T any](ctx context.Context, c *Client, resource, rawURL string, norm func(R) T) Result[[]T] {
	data, err := c.payload(ctx, resource, rawURL, true)
	if err != nil {
		c.logFailure(resource, rawURL, err)
		return Failed[[]T](err)
	}
	if data == nil {
		return Empty[[]T]()
	}

	var remote []R
	if err := json.Unmarshal(data, &remote); err != nil {
		err = fmt.Errorf("failed to decode %s list: %w", resource, err)
		c.logFailure(resource, rawURL, err)
		return Failed[[]T](err)
	}
	if len(remote) == 0 {
		return Empty[[]T]()
	}

	out := make([]T, 0, len(remote))
	for _, r := range remote {
		out = append(out, norm(r))
	}
	return Found(out)
}

// fetchOne fetches a single object and normalizes it; hasID rejects objects
// that carry no identity
func fetchOne[R any, T any](ctx context.Context, c *Client, resource, rawURL string, norm func(R) T, hasID func(R) bool) Result[*T] {
	data, err := c.payload(ctx, resource, rawURL, true)
	if err != nil {
		c.logFailure(resource, rawURL, err)
		return Failed[*T](err)
	}
	if data == nil {
		return Empty[*T]()
	}

	var remote R
	if err := json.Unmarshal(data, &remote); err != nil {
		err = fmt.Errorf("failed to decode %s: %w", resource, err)
		c.logFailure(resource, rawURL, err)
		return Failed[*T](err)
	}
	if !hasID(remote) {
		return Empty[*T]()
	}

	v := norm(remote)
	return Found(&v)
}

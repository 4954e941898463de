package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/pressing-admin/pkg/logger"
	"github.com/angelmondragon/pressing-admin/pkg/metrics"
	"github.com/angelmondragon/pressing-admin/pkg/retry"
)

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithSession injects the token source read by every request.
func WithSession(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithRetryPolicy replaces the default retry schedule.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithDefaultTimeout sets the per-attempt timeout.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLoginPath names the endpoint whose 401 must not trigger the unauthorized hook.
func WithLoginPath(path string) Option {
	return func(c *Client) {
		if strings.TrimSpace(path) != "" {
			c.loginPath = "/" + strings.Trim(strings.TrimSpace(path), "/")
		}
	}
}

// WithUnauthorizedHandler runs after a 401 cleared the session.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithLogger sets the logger used for request and retry entries.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// WithMetrics records request latencies and retries.
func WithMetrics(m *metrics.APIClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

type requestConfig struct {
	timeout time.Duration
	query   url.Values
	headers http.Header
	retries *int
}

// RequestOption tweaks a single call.
type RequestOption func(*requestConfig)

// WithTimeout overrides the per-attempt timeout of one request.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(r *requestConfig) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithQuery appends query values to the endpoint.
func WithQuery(values url.Values) RequestOption {
	return func(r *requestConfig) {
		if r.query == nil {
			r.query = url.Values{}
		}
		for key, vals := range values {
			for _, v := range vals {
				r.query.Add(key, v)
			}
		}
	}
}

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		if r.headers == nil {
			r.headers = http.Header{}
		}
		r.headers.Set(key, value)
	}
}

// WithRetries overrides the number of retries for one request.
func WithRetries(retries int) RequestOption {
	return func(r *requestConfig) {
		r.retries = &retries
	}
}

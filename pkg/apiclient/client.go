package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/pressing-admin/pkg/config"
	pkgerrors "github.com/angelmondragon/pressing-admin/pkg/errors"
	"github.com/angelmondragon/pressing-admin/pkg/logger"
	"github.com/angelmondragon/pressing-admin/pkg/metrics"
	"github.com/angelmondragon/pressing-admin/pkg/retry"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultLoginPath      = "/auth/login"
	responseBodyReadLimit = 8 << 20
	errorBodyLogLimit     = 512
	contentTypeJSON       = "application/json"
)

// TokenSource supplies the bearer token and forgets it after a 401.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Client is the single point of outbound communication with the pressing backend.
// It is safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokens         TokenSource
	retry          retry.Policy
	timeout        time.Duration
	loginPath      string
	onUnauthorized func(ctx context.Context)
	logg           *logger.Logger
	metrics        *metrics.APIClientMetrics
}

// New builds a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api base url must be absolute, got %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	client := &Client{
		httpClient: &http.Client{Jar: jar},
		baseURL:    strings.TrimRight(parsed.String(), "/"),
		retry:      retry.Default(),
		timeout:    defaultTimeout,
		loginPath:  defaultLoginPath,
		logg:       logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// NewFromConfig builds a client from the API configuration group.
func NewFromConfig(cfg config.APIConfig, opts ...Option) (*Client, error) {
	base := []Option{
		WithDefaultTimeout(cfg.Timeout),
		WithLoginPath(cfg.LoginPath),
		WithRetryPolicy(retry.Policy{MaxRetries: cfg.Retries, BaseDelay: cfg.RetryBase}),
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, endpoint string, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodGet, endpoint, nil, opts...)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodPost, endpoint, body, opts...)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodPut, endpoint, body, opts...)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodPatch, endpoint, body, opts...)
}

func (c *Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) (*Envelope, error) {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, opts...)
}

// Do sends a JSON request. A nil body sends no payload.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, opts ...RequestOption) (*Envelope, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode request body")
		}
		payload = encoded
	}
	contentType := ""
	if payload != nil {
		contentType = contentTypeJSON
	}
	return c.send(ctx, method, endpoint, payload, contentType, opts)
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, contentType string, opts []RequestOption) (*Envelope, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := requestConfig{timeout: c.timeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	target, err := c.buildURL(endpoint, cfg.query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build request url")
	}

	ctx = c.logg.WithEndpoint(ctx, method, endpoint)
	policy := c.retry
	if cfg.retries != nil {
		policy.MaxRetries = *cfg.retries
	}
	policy.Retryable = func(err error) bool {
		if ctx.Err() != nil {
			return false
		}
		if status := StatusOf(err); status != 0 {
			return IsRetryableStatus(status)
		}
		return true
	}
	policy.OnRetry = func(attempt int, err error) {
		c.metrics.IncRetry(method)
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"attempt": attempt, "error": err.Error()}), "retrying backend request")
	}

	started := time.Now()
	var (
		env    *Envelope
		status int
	)
	err = policy.Do(ctx, func(ctx context.Context, _ int) error {
		var attemptErr error
		env, status, attemptErr = c.attempt(ctx, method, target, endpoint, payload, contentType, cfg)
		return attemptErr
	})
	c.metrics.ObserveRequest(method, status, time.Since(started))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && StatusOf(err) == 0 {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctxErr, "backend request cancelled")
		}
		return nil, err
	}
	return env, nil
}

// attempt performs one HTTP exchange under its own timeout.
func (c *Client) attempt(ctx context.Context, method, target, endpoint string, payload []byte, contentType string, cfg requestConfig) (*Envelope, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, target, body)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build backend request")
	}
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range cfg.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logg.Warn(ctx, "reading session token failed: "+err.Error())
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute backend request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, resp.StatusCode, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read backend response")
	}

	if resp.StatusCode == http.StatusNoContent {
		return &Envelope{Success: true}, resp.StatusCode, nil
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		env, err := decodeEnvelope(raw)
		if err != nil {
			return nil, resp.StatusCode, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
		}
		return env, resp.StatusCode, nil
	}

	statusErr := parseStatusError(resp.StatusCode, raw)
	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx, endpoint)
	}
	if resp.StatusCode >= 500 {
		c.logg.Warn(c.logg.WithField(ctx, "body", truncate(raw, errorBodyLogLimit)), "backend returned server error")
	}
	typed := pkgerrors.Wrap(pkgerrors.CodeForStatus(resp.StatusCode), statusErr, statusErr.Message)
	if len(statusErr.Errors) > 0 {
		typed = typed.WithDetails(statusErr.Errors)
	}
	return nil, resp.StatusCode, typed
}

func (c *Client) handleUnauthorized(ctx context.Context, endpoint string) {
	if c.tokens != nil {
		if err := c.tokens.Clear(ctx); err != nil {
			c.logg.Error(ctx, "clearing session after 401 failed", err)
		}
	}
	if c.isLoginEndpoint(endpoint) {
		return
	}
	c.logg.Info(ctx, "backend rejected session; login required")
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func (c *Client) isLoginEndpoint(endpoint string) bool {
	path := endpoint
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	return "/"+strings.Trim(path, "/") == c.loginPath
}

func (c *Client) buildURL(endpoint string, query url.Values) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", errors.New("endpoint is required")
	}
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) == 0 {
		return target, nil
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	values := parsed.Query()
	for key, vals := range query {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	parsed.RawQuery = values.Encode()
	return parsed.String(), nil
}

func truncate(raw []byte, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}

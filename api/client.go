// Package api is the portal's outgoing-request pipeline: a single HTTP client
// that decorates every request with the current bearer credential and
// recovers transparently from an expired access token by refreshing once and
// replaying the original request once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
	"github.com/dhriti-exe/MIS-Portal-CDAC/token"
)

const defaultUserAgent = "mis-portal-client/1.0"

const defaultHTTPTimeout = 30 * time.Second

// Client wraps a generic HTTP transport with the attach-auth and
// retry-on-401 middleware and exposes typed wrappers for the portal's REST
// endpoints. It reads and mutates the session exclusively through the Store;
// it holds no private copy of session state.
type Client struct {
	baseURL   string
	store     *session.Store
	transport Doer
	pipeline  Doer
	refresher *refresher
	logger    zerolog.Logger
	userAgent string

	// refreshBuffer > 0 turns on proactive refresh: requests whose access
	// token expires within the buffer refresh before sending instead of
	// waiting for the 401.
	refreshBuffer time.Duration

	// unauthorizedHook runs after the session is cleared on a terminal auth
	// failure. It is the UI layer's chance to send the user to the login
	// page.
	unauthorizedHook func()
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the underlying transport (primarily for testing).
func WithTransport(transport Doer) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header value.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRefreshBuffer enables proactive refresh for tokens expiring within
// buffer.
func WithRefreshBuffer(buffer time.Duration) Option {
	return func(c *Client) {
		c.refreshBuffer = buffer
	}
}

// WithUnauthorizedHook registers the hook invoked after a terminal auth
// failure clears the session.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) {
		c.unauthorizedHook = hook
	}
}

// New creates a Client for the backend at baseURL, reading and writing
// session state through store.
func New(baseURL string, store *session.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[api.New] store is required")
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		store:     store,
		transport: &http.Client{Timeout: defaultHTTPTimeout},
		logger:    zerolog.Nop(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range options {
		opt(c)
	}

	c.refresher = &refresher{
		baseURL:   c.baseURL,
		transport: c.transport,
		store:     store,
		logger:    c.logger,
		userAgent: c.userAgent,
	}
	c.pipeline = Chain(c.transport, c.RetryOn401(), c.AttachAuth())
	return c, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request through the pipeline and decodes a 2xx JSON response
// into out (out may be nil). Non-2xx responses come back as *APIError; the
// 401 handling inside the pipeline has already run by the time one surfaces
// here.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	c.ensureFresh(ctx)

	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "[Client.do] encode %s %s payload", method, path)
		}
		body = bytes.NewReader(data)
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] create %s %s request", method, path)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.pipeline.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Status: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}
	if out == nil {
		drain(resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client.do] decode %s %s response", method, path)
	}
	return nil
}

// ensureFresh refreshes proactively when the access token expires within the
// configured buffer. Failure here is non-fatal: the request proceeds with the
// current token and the 401 path remains the recovery of record.
func (c *Client) ensureFresh(ctx context.Context) {
	if c.refreshBuffer <= 0 {
		return
	}
	state := c.store.State()
	if state.AccessToken == "" || state.RefreshToken == "" {
		return
	}
	if !token.NeedsRefresh(state.AccessToken, c.refreshBuffer) {
		return
	}
	if _, err := c.refresher.refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("proactive token refresh failed, continuing with current token")
	}
}

// failAuth clears the session and notifies the UI layer. Called once per
// terminal auth failure.
func (c *Client) failAuth() {
	if err := c.store.ClearAuth(); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear session on terminal auth failure")
	}
	if c.unauthorizedHook != nil {
		c.unauthorizedHook()
	}
}

// decodeDetail extracts the backend's {"detail": "..."} error body. Falls
// back to the raw body when the shape differs.
func decodeDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(data))
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
}

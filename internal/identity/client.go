package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qualitasnexus/nexctl/internal/errors"
	"github.com/qualitasnexus/nexctl/internal/log"
	"github.com/qualitasnexus/nexctl/internal/session"
)

// Client is the Nexus identity API client. All calls except token refresh
// go through an AuthTransport that injects credentials and handles
// refresh-on-401; refresh itself uses a bare HTTP client so an expired
// access token can never poison the refresh call.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	refreshClient *http.Client

	store  *session.Store
	logger *log.Logger

	transport *AuthTransport

	permissionRetryDelay time.Duration
}

// Option is a functional option for client configuration
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the per-request timeout on both HTTP clients
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
		c.refreshClient.Timeout = timeout
	}
}

// WithPermissionRetryDelay overrides the delay between permission fetch
// retries. Tests use this to avoid real two-second sleeps.
func WithPermissionRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.permissionRetryDelay = d
	}
}

// WithBaseTransport replaces the transport the AuthTransport wraps.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport.base = rt
	}
}

// NewClient creates an identity API client. storage may be nil; when set it
// serves as the raw fallback for credential reads before the store has
// rehydrated. onAuthError receives the logout side effects when the
// pipeline gives up on a session.
func NewClient(baseURL string, store *session.Store, storage session.Storage, onAuthError AuthErrorHandler, opts ...Option) *Client {
	c := &Client{
		baseURL:              strings.TrimRight(baseURL, "/"),
		store:                store,
		logger:               log.DefaultLogger(),
		refreshClient:        &http.Client{Timeout: 30 * time.Second},
		permissionRetryDelay: permissionsRetryDelay,
	}

	c.transport = NewAuthTransport(store, storage, c, onAuthError, nil)
	c.httpClient = &http.Client{
		Timeout:   30 * time.Second,
		Transport: c.transport,
	}

	for _, opt := range opts {
		opt(c)
	}
	c.transport.logger = c.logger

	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Transport exposes the request pipeline, mainly for tests.
func (c *Client) Transport() *AuthTransport {
	return c.transport
}

// AuthHeaders carries explicit per-call credentials. It is constructed from
// session state at the call site and never stored; when present it wins
// over whatever the pipeline would inject.
type AuthHeaders struct {
	AccessToken string
	Tenant      string
}

// requestOptions collects per-request settings
type requestOptions struct {
	auth    *AuthHeaders
	headers http.Header
}

// RequestOption is a functional option for a single API call
type RequestOption func(*requestOptions)

// WithAuthHeaders pins explicit credentials onto one request, bypassing
// the pipeline's session lookup.
func WithAuthHeaders(auth AuthHeaders) RequestOption {
	return func(o *requestOptions) {
		o.auth = &auth
	}
}

// WithHeader adds a header to one request
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// doRequest builds and dispatches an authenticated request through the
// pipeline.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any, opts ...RequestOption) (*http.Response, error) {
	var reqOpts requestOptions
	for _, opt := range opts {
		opt(&reqOpts)
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	for key, values := range reqOpts.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if reqOpts.auth != nil {
		if reqOpts.auth.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+reqOpts.auth.AccessToken)
		}
		if reqOpts.auth.Tenant != "" {
			req.Header.Set("tenant", reqOpts.auth.Tenant)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIUnreachableError(c.baseURL, err)
	}

	return resp, nil
}

// errorResponse covers the error body shapes the backend produces:
// a flat {error, message} pair or a validation envelope with messages.
type errorResponse struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Messages  []string `json:"messages"`
	Exception string   `json:"exception"`
}

// detail picks the most useful human-readable message out of the body
func (e *errorResponse) detail() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return ""
}

// parseResponse decodes the response body into target, mapping non-2xx
// statuses onto coded errors. Validation failures carry the backend's
// structured messages when they parse, a generic fallback otherwise.
func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		var errResp errorResponse
		detail := ""
		if err := json.Unmarshal(body, &errResp); err == nil {
			detail = errResp.detail()
		}

		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
			return errors.NewValidationError(detail)
		case http.StatusUnauthorized:
			return errors.NewSessionExpiredError()
		case http.StatusForbidden:
			return errors.New(errors.ErrCodeForbidden, "the backend refused the request")
		default:
			if detail == "" {
				detail = strings.TrimSpace(string(body))
			}
			return errors.New(errors.ErrCodeAPIStatus,
				fmt.Sprintf("request failed with status %d: %s", resp.StatusCode, detail))
		}
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return errors.Wrap(errors.ErrCodeResponseMalformed, "failed to decode response", err)
		}
	}

	return nil
}

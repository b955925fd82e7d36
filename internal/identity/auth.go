package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/qualitasnexus/nexctl/internal/errors"
)

// Credentials is the login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is the backend's token issue/refresh response
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshRequest is the token refresh request body
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login exchanges credentials for a token pair. The tenant travels as a
// request header, not in the body. Transport and status failures propagate
// as-is; the caller decides how to present them (the CLI shows a generic
// invalid-credentials message rather than the backend's own wording).
func (c *Client) Login(ctx context.Context, creds Credentials, tenant string) (*TokenPair, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/identity/token/issue", nil, creds,
		WithHeader("tenant", tenant))
	if err != nil {
		return nil, err
	}

	var pair TokenPair
	if err := parseResponse(resp, &pair); err != nil {
		return nil, err
	}

	return &pair, nil
}

// RefreshToken exchanges the session's refresh token for a fresh pair.
//
// It reads the refresh token from the store; when none exists it returns
// (nil, nil) without touching the network. The request is sent over the
// bare refresh client with no Authorization header at all: the access
// token is presumed expired, and attaching it could only hurt.
//
// Refresh failing is a normal outcome (the refresh token itself expires),
// so every failure maps to a nil pair; the error is context for logging,
// never something the pipeline turns into a crash.
func (c *Client) RefreshToken(ctx context.Context) (*TokenPair, error) {
	refreshToken := c.store.Snapshot().RefreshToken
	if refreshToken == "" {
		return nil, nil
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/identity/token/refresh", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	tenant := c.transport.currentTenant()
	if tenant != "" {
		req.Header.Set("tenant", tenant)
	}

	resp, err := c.refreshClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRefreshFailed, "token refresh request failed", err)
	}

	var pair TokenPair
	if err := parseResponse(resp, &pair); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRefreshFailed, "token refresh rejected", err)
	}

	return &pair, nil
}

package identity

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/qualitasnexus/nexctl/internal/log"
	"github.com/qualitasnexus/nexctl/internal/session"
)

// redirectCooldownDefault is how long the gate stays held after a 403
// logout, so a burst of parallel rejections produces one logout, not one
// each.
const redirectCooldownDefault = time.Second

// TokenRefresher exchanges the session's refresh token for a new pair.
// A nil pair (with or without an error) means the session is beyond
// refreshing.
type TokenRefresher interface {
	RefreshToken(ctx context.Context) (*TokenPair, error)
}

// AuthErrorHandler receives the logout side effects when the backend
// rejects the session.
type AuthErrorHandler interface {
	LogoutOnAuthError(status int)
}

// AuthTransport is the request pipeline: an http.RoundTripper that keeps
// every outgoing call authenticated and tenant-scoped, transparently
// refreshes the token once on 401, and forces logout when the session is
// beyond saving.
//
// The redirect gate is the pipeline's only mutual exclusion: whichever
// in-flight request trips an auth failure first owns the recovery, and
// concurrent failures propagate untouched instead of piling up refresh
// calls.
type AuthTransport struct {
	base        http.RoundTripper
	store       *session.Store
	storage     session.Storage
	refresher   TokenRefresher
	onAuthError AuthErrorHandler
	logger      *log.Logger

	defaultTenant string
	cooldown      time.Duration

	mu          sync.Mutex
	redirecting bool
}

// NewAuthTransport creates the pipeline around base (http.DefaultTransport
// when nil). storage is the raw persisted-state fallback consulted when
// the store holds no credentials; it may be nil.
func NewAuthTransport(store *session.Store, storage session.Storage, refresher TokenRefresher, onAuthError AuthErrorHandler, base http.RoundTripper) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{
		base:          base,
		store:         store,
		storage:       storage,
		refresher:     refresher,
		onAuthError:   onAuthError,
		logger:        log.DefaultLogger(),
		defaultTenant: "root",
		cooldown:      redirectCooldownDefault,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out, err := t.prepare(req)
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if !t.tryAcquire() {
			// Another request already drives a refresh or a logout is in
			// progress; this failure propagates as-is.
			return resp, nil
		}
		return t.refreshAndRetry(out, resp)

	case http.StatusForbidden:
		// Authenticated but not allowed: refreshing cannot help, the
		// session ends immediately. The gate is held over a cooldown so
		// simultaneous 403s trigger a single logout.
		if t.tryAcquire() {
			t.onAuthError.LogoutOnAuthError(http.StatusForbidden)
			time.AfterFunc(t.cooldown, t.release)
		}
		return resp, nil

	default:
		return resp, nil
	}
}

// prepare clones the request and applies the outbound phase: bearer token
// and tenant header, each only when the caller has not set one already.
// The body is buffered if needed so the request can be replayed after a
// refresh.
func (t *AuthTransport) prepare(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())

	if out.Header.Get("Authorization") == "" {
		if token := t.currentAccessToken(); token != "" {
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if out.Header.Get("tenant") == "" {
		out.Header.Set("tenant", t.currentTenant())
	}

	if out.Body != nil && out.GetBody == nil {
		data, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return nil, err
		}
		out.Body = io.NopCloser(bytes.NewReader(data))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	return out, nil
}

// refreshAndRetry runs the single refresh-and-replay cycle for a request
// that came back 401. It enters holding the gate and guarantees that the
// gate and the store's refreshing flag are both released on every path,
// including panics.
func (t *AuthTransport) refreshAndRetry(req *http.Request, failed *http.Response) (*http.Response, error) {
	cleared := false
	clear := func() {
		if cleared {
			return
		}
		cleared = true
		t.store.SetRefreshingToken(false)
		t.release()
	}
	defer clear()

	t.store.SetRefreshingToken(true)

	pair, err := t.refresher.RefreshToken(req.Context())
	if err != nil {
		t.logger.Warn("token refresh failed", "error", err.Error())
		pair = nil
	}

	if pair == nil || pair.AccessToken == "" {
		t.onAuthError.LogoutOnAuthError(http.StatusUnauthorized)
		return failed, nil
	}

	t.store.Login(pair.AccessToken, pair.RefreshToken)

	retry := req.Clone(req.Context())
	retry.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			t.onAuthError.LogoutOnAuthError(http.StatusUnauthorized)
			return failed, nil
		}
		retry.Body = body
	}

	drain(failed)
	clear()

	// Replayed exactly once, straight through the base transport: a second
	// 401 propagates to the caller rather than looping back into another
	// refresh.
	return t.base.RoundTrip(retry)
}

// currentAccessToken reads the access token from the store, falling back
// to the raw persisted state when the store has none. The fallback covers
// the startup window where requests fire before the store rehydrated.
func (t *AuthTransport) currentAccessToken() string {
	if token := t.store.Snapshot().AccessToken; token != "" {
		return token
	}
	if t.storage != nil {
		if state, err := t.storage.Load(); err == nil && state != nil {
			return state.AccessToken
		}
	}
	return ""
}

// currentTenant resolves the tenant header value: the session user's
// tenant, then the persisted user's, then the default.
func (t *AuthTransport) currentTenant() string {
	if user := t.store.Snapshot().User; user != nil && user.Tenant != "" {
		return user.Tenant
	}
	if t.storage != nil {
		if state, err := t.storage.Load(); err == nil && state != nil && state.User != nil && state.User.Tenant != "" {
			return state.User.Tenant
		}
	}
	return t.defaultTenant
}

// tryAcquire takes the redirect gate; it reports false when recovery is
// already in progress.
func (t *AuthTransport) tryAcquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.redirecting {
		return false
	}
	t.redirecting = true
	return true
}

func (t *AuthTransport) release() {
	t.mu.Lock()
	t.redirecting = false
	t.mu.Unlock()
}

// Redirecting reports whether the gate is currently held.
func (t *AuthTransport) Redirecting() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.redirecting
}

func drain(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

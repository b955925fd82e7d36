package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/qualitasnexus/nexctl/internal/exitcode"
)

// fakeBackend is a minimal identity backend for command tests.
type fakeBackend struct {
	accessToken string
	permissions []string

	loginCalls  int
	loginTenant string
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/identity/token/issue", func(w http.ResponseWriter, r *http.Request) {
		b.loginCalls++
		b.loginTenant = r.Header.Get("tenant")
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  b.accessToken,
			"refreshToken": "R1",
		})
	})
	mux.HandleFunc("/api/v1/identity/permissions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(b.permissions)
	})
	return mux
}

func backendToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": "u1",
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress": "op@example.com",
		"fullName": "Olive Parker",
		"tenant":   "acme",
	}).SignedString([]byte("backend-key"))
	require.NoError(t, err)
	return token
}

func startBackend(t *testing.T, backend *fakeBackend) {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	t.Setenv("NEXCTL_HOME", t.TempDir())
	t.Setenv("NEXCTL_API_URL", server.URL)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestLoginLogoutFlow(t *testing.T) {
	backend := &fakeBackend{
		accessToken: backendToken(t),
		permissions: []string{"Permissions.Users.View"},
	}
	startBackend(t, backend)

	out, err := execute(t, "login",
		"--email", "op@example.com", "--password", "hunter2", "--tenant", "acme")
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as Olive Parker")
	require.Contains(t, out, "1 permissions granted")
	require.Equal(t, "acme", backend.loginTenant)

	out, err = execute(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "op@example.com")
	require.Contains(t, out, "acme")

	out, err = execute(t, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out.")

	out, err = execute(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in.")
}

func TestLoginRejectionIsGeneric(t *testing.T) {
	backend := &fakeBackend{accessToken: backendToken(t)}
	startBackend(t, backend)

	_, err := execute(t, "login",
		"--email", "op@example.com", "--password", "totally-wrong", "--tenant", "acme")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid email, password or tenant")
	require.NotContains(t, err.Error(), "totally-wrong")
	require.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
}

func TestCommandsRequireSession(t *testing.T) {
	backend := &fakeBackend{accessToken: backendToken(t)}
	startBackend(t, backend)

	_, err := execute(t, "users", "list")
	require.Error(t, err)
	require.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
}

func TestPermissionsCommandListsGrants(t *testing.T) {
	backend := &fakeBackend{
		accessToken: backendToken(t),
		permissions: []string{"Permissions.Users.View", "Permissions.Roles.View"},
	}
	startBackend(t, backend)

	_, err := execute(t, "login",
		"--email", "op@example.com", "--password", "hunter2", "--tenant", "acme")
	require.NoError(t, err)

	out, err := execute(t, "permissions")
	require.NoError(t, err)
	require.Contains(t, out, "Permissions.Users.View")
	require.Contains(t, out, "Permissions.Roles.View")
}

func TestStatusJSONFormat(t *testing.T) {
	backend := &fakeBackend{
		accessToken: backendToken(t),
		permissions: []string{"Permissions.Users.View"},
	}
	startBackend(t, backend)

	_, err := execute(t, "login",
		"--email", "op@example.com", "--password", "hunter2", "--tenant", "acme")
	require.NoError(t, err)

	out, err := execute(t, "status", "--format", "json")
	require.NoError(t, err)

	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	require.Equal(t, true, status["loggedIn"])
	require.Equal(t, "op@example.com", status["email"])

	// Reset for later tests; persistent flags keep their values.
	_, err = execute(t, "logout", "--format", "text")
	require.NoError(t, err)
}

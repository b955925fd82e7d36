package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qualitasnexus/nexctl/internal/exitcode"
	"github.com/qualitasnexus/nexctl/internal/identity"
)

// adminBackend extends the auth backend with user, role, and group routes.
func startAdminBackend(t *testing.T, permissions []string) *adminBackend {
	t.Helper()
	backend := &adminBackend{
		fakeBackend: fakeBackend{
			accessToken: backendToken(t),
			permissions: permissions,
		},
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/identity/token/issue", backend.fakeBackend.handler(t))
	mux.Handle("/api/v1/identity/permissions", backend.fakeBackend.handler(t))
	mux.HandleFunc("/api/v1/identity/users/search", func(w http.ResponseWriter, r *http.Request) {
		backend.searchQuery = r.URL.Query().Get("Search")
		json.NewEncoder(w).Encode(identity.UserPage{
			Items: []identity.User{
				{ID: "u1", UserName: "ada", Email: "ada@example.com", FirstName: "Ada", IsActive: true},
			},
			PageNumber: 1,
			TotalPages: 1,
			TotalCount: 1,
		})
	})
	mux.HandleFunc("/api/v1/identity/users/u1", func(w http.ResponseWriter, r *http.Request) {
		backend.lastMethod = r.Method
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			json.NewEncoder(w).Encode(identity.User{ID: "u1", UserName: "ada", Email: "ada@example.com"})
		}
	})
	mux.HandleFunc("/api/v1/identity/roles", func(w http.ResponseWriter, r *http.Request) {
		backend.lastMethod = r.Method
		if r.Method == http.MethodPost {
			var upsert identity.UpsertRoleRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&upsert))
			json.NewEncoder(w).Encode(identity.Role{ID: "r1", Name: upsert.Name})
			return
		}
		json.NewEncoder(w).Encode([]identity.Role{{ID: "r1", Name: "auditor"}})
	})
	mux.HandleFunc("/api/v1/identity/groups", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]identity.Group{{ID: "g1", Name: "auditors", MemberCount: 3}})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	t.Setenv("NEXCTL_HOME", t.TempDir())
	t.Setenv("NEXCTL_API_URL", server.URL)
	return backend
}

type adminBackend struct {
	fakeBackend
	searchQuery string
	lastMethod  string
}

func login(t *testing.T) {
	t.Helper()
	_, err := execute(t, "login",
		"--email", "op@example.com", "--password", "hunter2", "--tenant", "acme")
	require.NoError(t, err)
}

func TestUsersListRendersTable(t *testing.T) {
	backend := startAdminBackend(t, []string{identity.PermUsersView})
	login(t)

	out, err := execute(t, "users", "list", "--search", "ada")
	require.NoError(t, err)
	require.Equal(t, "ada", backend.searchQuery)
	require.Contains(t, out, "ada@example.com")
	require.Contains(t, out, "page 1 of 1")
}

func TestUsersListDeniedWithoutPermission(t *testing.T) {
	startAdminBackend(t, []string{identity.PermDashboardView})
	login(t)

	_, err := execute(t, "users", "list")
	require.Error(t, err)
	require.Contains(t, err.Error(), identity.PermUsersView)
	require.Equal(t, exitcode.PermissionDenied, exitcode.DetermineExitCode(err))
}

func TestUsersDeleteNeedsConfirmationFlag(t *testing.T) {
	backend := startAdminBackend(t, []string{identity.PermUsersDelete})
	login(t)

	// stdin is not a terminal under test, so --yes is mandatory.
	_, err := execute(t, "users", "delete", "u1")
	require.Error(t, err)

	out, err := execute(t, "users", "delete", "u1", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "Deleted user u1")
	require.Equal(t, http.MethodDelete, backend.lastMethod)
}

func TestRolesCreate(t *testing.T) {
	backend := startAdminBackend(t, []string{identity.PermRolesCreate})
	login(t)

	out, err := execute(t, "roles", "create", "auditor")
	require.NoError(t, err)
	require.Contains(t, out, "Created role auditor (r1)")
	require.Equal(t, http.MethodPost, backend.lastMethod)
}

func TestGroupsList(t *testing.T) {
	startAdminBackend(t, []string{identity.PermGroupsView})
	login(t)

	out, err := execute(t, "groups", "list")
	require.NoError(t, err)
	require.Contains(t, out, "auditors")
	require.Contains(t, out, "3")
}

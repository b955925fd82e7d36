package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qualitasnexus/nexctl/internal/session"
)

func TestGetUserPermissionsReturnsGrantedSet(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/identity/permissions", r.URL.Path)
		json.NewEncoder(w).Encode([]string{PermUsersView, PermRolesView})
	}))
	store.Login("A1", "R1")

	perms := client.GetUserPermissions(context.Background(), "")
	require.Equal(t, []string{PermUsersView, PermRolesView}, perms)
}

func TestGetUserPermissionsPinsExplicitToken(t *testing.T) {
	var gotAuth string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]string{})
	}))
	store.Login("STALE", "R1")

	client.GetUserPermissions(context.Background(), "FRESH")
	require.Equal(t, "Bearer FRESH", gotAuth, "explicit token wins over the stored one")
}

func TestGetUserPermissionsRetriesRateLimitThenGivesUp(t *testing.T) {
	attempts := 0
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	store.Login("A1", "R1")
	WithPermissionRetryDelay(time.Millisecond)(client)

	perms := client.GetUserPermissions(context.Background(), "")
	require.Equal(t, 3, attempts, "original attempt plus two retries")
	require.NotNil(t, perms)
	require.Empty(t, perms)
}

func TestGetUserPermissionsRecoversAfterRateLimit(t *testing.T) {
	attempts := 0
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode([]string{PermGroupsView})
	}))
	store.Login("A1", "R1")
	WithPermissionRetryDelay(time.Millisecond)(client)

	perms := client.GetUserPermissions(context.Background(), "")
	require.Equal(t, 2, attempts)
	require.Equal(t, []string{PermGroupsView}, perms)
}

func TestGetUserPermissionsFailsOpenOnServerError(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	store.Login("A1", "R1")

	perms := client.GetUserPermissions(context.Background(), "")
	require.NotNil(t, perms)
	require.Empty(t, perms)
}

func TestLoadPermissionsRecordsSetAndLoadingFlag(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{PermUsersView})
	}))
	store.Login("A1", "R1")

	var sawLoading bool
	unsubscribe := store.Subscribe(func(snap session.Snapshot) {
		if snap.IsLoadingPermissions {
			sawLoading = true
		}
	})
	defer unsubscribe()

	perms := client.LoadPermissions(context.Background(), "")
	require.Equal(t, []string{PermUsersView}, perms)
	require.True(t, sawLoading, "loading flag must be raised during the fetch")

	snap := store.Snapshot()
	require.Equal(t, []string{PermUsersView}, snap.Permissions)
	require.False(t, snap.IsLoadingPermissions)
	require.NoError(t, snap.PermissionError)
	require.True(t, store.HasPermission(PermUsersView))
}

package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	nexerrors "github.com/qualitasnexus/nexctl/internal/errors"
)

func TestRequestsCarryBaseHeaders(t *testing.T) {
	var gotContentType, gotRequestID string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-Id")
		json.NewEncoder(w).Encode(Role{})
	}))
	store.Login("A1", "R1")

	_, err := client.UpsertRole(context.Background(), UpsertRoleRequest{Name: "auditor"})
	require.NoError(t, err)
	require.Equal(t, "application/json", gotContentType)
	require.NotEmpty(t, gotRequestID, "every request is tagged for tracing")
}

func TestValidationErrorCarriesBackendDetail(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"messages": []string{"Name is required"}})
	}))
	store.Login("A1", "R1")

	_, err := client.UpsertRole(context.Background(), UpsertRoleRequest{})
	require.Error(t, err)
	var coded *nexerrors.NexctlError
	require.ErrorAs(t, err, &coded)
	require.Equal(t, nexerrors.ErrCodeValidationFailed, coded.Code)
	require.Contains(t, coded.Message, "Name is required")
}

func TestUnexpectedStatusMapsToAPIError(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	store.Login("A1", "R1")

	_, err := client.GetRoles(context.Background())
	require.Error(t, err)
	var coded *nexerrors.NexctlError
	require.ErrorAs(t, err, &coded)
	require.Equal(t, nexerrors.ErrCodeAPIStatus, coded.Code)
}

func TestUnreachableBackendMapsToAPIError(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	store.Login("A1", "R1")

	// Point the client at a port nothing listens on.
	broken := NewClient("http://127.0.0.1:1", client.store, nil, &logoutRecorder{})
	_, err := broken.GetRoles(context.Background())
	require.Error(t, err)
	var coded *nexerrors.NexctlError
	require.ErrorAs(t, err, &coded)
	require.Equal(t, nexerrors.ErrCodeAPIUnreachable, coded.Code)
}

func TestSearchUsersBuildsQueryAndDecodesPage(t *testing.T) {
	var gotQuery url.Values
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/identity/users/search", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(UserPage{
			Items:      []User{{ID: "u1", Email: "a@example.com"}},
			PageNumber: 2,
			PageSize:   25,
			TotalCount: 51,
			TotalPages: 3,
			HasNext:    true,
		})
	}))
	store.Login("A1", "R1")

	active := true
	page, err := client.SearchUsers(context.Background(), UserSearchFilter{
		PageNumber: 2,
		PageSize:   25,
		Sort:       "email",
		Search:     "smith",
		IsActive:   &active,
		RoleID:     "r9",
	})
	require.NoError(t, err)
	require.Equal(t, "2", gotQuery.Get("PageNumber"))
	require.Equal(t, "25", gotQuery.Get("PageSize"))
	require.Equal(t, "email", gotQuery.Get("Sort"))
	require.Equal(t, "smith", gotQuery.Get("Search"))
	require.Equal(t, "true", gotQuery.Get("IsActive"))
	require.Equal(t, "r9", gotQuery.Get("RoleId"))
	require.Len(t, page.Items, 1)
	require.True(t, page.HasNext)
}

func TestToggleUserStatusPatchesUser(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	store.Login("A1", "R1")

	require.NoError(t, client.ToggleUserStatus(context.Background(), "u42", false))
	require.Equal(t, http.MethodPatch, gotMethod)
	require.Equal(t, "/api/v1/identity/users/u42", gotPath)
	require.Equal(t, false, gotBody["activateUser"])
	require.Equal(t, "u42", gotBody["userId"])
}

func TestUpdateRolePermissionsUsesPermissionsPath(t *testing.T) {
	var gotMethod, gotPath string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	store.Login("A1", "R1")

	err := client.UpdateRolePermissions(context.Background(), "r1", UpdateRolePermissionsRequest{
		RoleID:      "r1",
		Permissions: []string{PermUsersView},
	})
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "/api/v1/identity/r1/permissions", gotPath)
}

func TestGetGroupsPassesSearchTerm(t *testing.T) {
	var gotSearch string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/identity/groups", r.URL.Path)
		gotSearch = r.URL.Query().Get("search")
		json.NewEncoder(w).Encode([]Group{{ID: "g1", Name: "auditors"}})
	}))
	store.Login("A1", "R1")

	groups, err := client.GetGroups(context.Background(), "audit")
	require.NoError(t, err)
	require.Equal(t, "audit", gotSearch)
	require.Len(t, groups, 1)
	require.Equal(t, "auditors", groups[0].Name)
}

func TestDeleteGroupTargetsGroupPath(t *testing.T) {
	var gotMethod, gotPath string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	store.Login("A1", "R1")

	require.NoError(t, client.DeleteGroup(context.Background(), "g7"))
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/api/v1/identity/groups/g7", gotPath)
}

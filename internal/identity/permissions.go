package identity

import (
	"context"
	"net/http"
	"time"
)

const (
	permissionsRetryDelay = 2 * time.Second
	permissionsMaxRetries = 2
)

// Permission strings as issued by the backend (its ClaimValue constants).
// The dotted structure is a naming convention only; the client never
// interprets any hierarchy, membership is all that matters.
const (
	PermDashboardView = "Permissions.Dashboard.View"

	PermUsersView   = "Permissions.Users.View"
	PermUsersSearch = "Permissions.Users.Search"
	PermUsersCreate = "Permissions.Users.Create"
	PermUsersUpdate = "Permissions.Users.Update"
	PermUsersDelete = "Permissions.Users.Delete"
	PermUsersExport = "Permissions.Users.Export"

	PermRolesView   = "Permissions.Roles.View"
	PermRolesCreate = "Permissions.Roles.Create"
	PermRolesUpdate = "Permissions.Roles.Update"
	PermRolesDelete = "Permissions.Roles.Delete"

	PermRoleClaimsView   = "Permissions.RoleClaims.View"
	PermRoleClaimsUpdate = "Permissions.RoleClaims.Update"

	PermUserRolesView   = "Permissions.UserRoles.View"
	PermUserRolesUpdate = "Permissions.UserRoles.Update"

	PermGroupsView   = "Permissions.Groups.View"
	PermGroupsCreate = "Permissions.Groups.Create"
	PermGroupsUpdate = "Permissions.Groups.Update"
	PermGroupsDelete = "Permissions.Groups.Delete"
)

// GetUserPermissions fetches the flat permission set granted to the
// current session.
//
// accessToken, when non-empty, is pinned onto the request explicitly. The
// login flow passes the token it just received so the fetch cannot race
// the store write that is still settling.
//
// Rate limiting (429) is retried up to two more times with a fixed delay.
// This method never fails from the caller's point of view: once retries
// are exhausted, or on any other error, it logs a warning and returns an
// empty set. An operator with no permissions loaded simply sees no
// protected actions, which is the safe default; blocking login over a
// permissions hiccup would be worse.
func (c *Client) GetUserPermissions(ctx context.Context, accessToken string) []string {
	var opts []RequestOption
	if accessToken != "" {
		opts = append(opts, WithAuthHeaders(AuthHeaders{AccessToken: accessToken}))
	}

	for attempt := 0; attempt <= permissionsMaxRetries; attempt++ {
		resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identity/permissions", nil, nil, opts...)
		if err != nil {
			c.logger.Warn("could not load permissions", "error", err.Error())
			return []string{}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt < permissionsMaxRetries {
				select {
				case <-time.After(c.permissionRetryDelay):
					continue
				case <-ctx.Done():
					c.logger.Warn("permission fetch cancelled while rate limited")
					return []string{}
				}
			}
			c.logger.Warn("rate limited loading permissions; login continues, reload them later")
			return []string{}
		}

		var permissions []string
		if err := parseResponse(resp, &permissions); err != nil {
			c.logger.Warn("could not load permissions", "error", err.Error())
			return []string{}
		}
		if permissions == nil {
			permissions = []string{}
		}
		return permissions
	}

	return []string{}
}

// LoadPermissions fetches the permission set and records it on the store,
// maintaining the loading flag around the fetch. Because the fetch fails
// open to an empty set, the permission error field only ever reflects a
// cancelled context.
func (c *Client) LoadPermissions(ctx context.Context, accessToken string) []string {
	c.store.SetLoadingPermissions(true)
	defer c.store.SetLoadingPermissions(false)

	permissions := c.GetUserPermissions(ctx, accessToken)
	c.store.SetPermissions(permissions)
	c.store.SetPermissionError(ctx.Err())
	return permissions
}

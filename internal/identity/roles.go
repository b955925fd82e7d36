package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Role is the backend's role record. Permissions is only populated by the
// role permission endpoints.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// UpsertRoleRequest creates a role, or updates it when ID is set.
type UpsertRoleRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateRolePermissionsRequest replaces the permission set of a role.
type UpdateRolePermissionsRequest struct {
	RoleID      string   `json:"roleId,omitempty"`
	Permissions []string `json:"permissions"`
}

// GetRoles lists all roles of the current tenant.
func (c *Client) GetRoles(ctx context.Context, opts ...RequestOption) ([]Role, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identity/roles", nil, nil, opts...)
	if err != nil {
		return nil, err
	}

	var roles []Role
	if err := parseResponse(resp, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRole fetches a single role by id.
func (c *Client) GetRole(ctx context.Context, roleID string, opts ...RequestOption) (*Role, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identity/roles/"+url.PathEscape(roleID), nil, nil, opts...)
	if err != nil {
		return nil, err
	}

	var role Role
	if err := parseResponse(resp, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// GetRolePermissions fetches a role together with its granted permissions.
func (c *Client) GetRolePermissions(ctx context.Context, roleID string, opts ...RequestOption) (*Role, error) {
	path := fmt.Sprintf("/api/v1/identity/%s/permissions", url.PathEscape(roleID))
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil, opts...)
	if err != nil {
		return nil, err
	}

	var role Role
	if err := parseResponse(resp, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// UpsertRole creates or updates a role.
func (c *Client) UpsertRole(ctx context.Context, upsert UpsertRoleRequest, opts ...RequestOption) (*Role, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/identity/roles", nil, upsert, opts...)
	if err != nil {
		return nil, err
	}

	var role Role
	if err := parseResponse(resp, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateRolePermissions replaces the permissions granted to a role.
func (c *Client) UpdateRolePermissions(ctx context.Context, roleID string, update UpdateRolePermissionsRequest, opts ...RequestOption) error {
	path := fmt.Sprintf("/api/v1/identity/%s/permissions", url.PathEscape(roleID))
	resp, err := c.doRequest(ctx, http.MethodPut, path, nil, update, opts...)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

// DeleteRole removes a role.
func (c *Client) DeleteRole(ctx context.Context, roleID string, opts ...RequestOption) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/v1/identity/roles/"+url.PathEscape(roleID), nil, nil, opts...)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

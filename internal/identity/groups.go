package identity

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Group is the backend's group record
type Group struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	IsDefault     bool      `json:"isDefault"`
	IsSystemGroup bool      `json:"isSystemGroup"`
	MemberCount   int       `json:"memberCount"`
	RoleIDs       []string  `json:"roleIds"`
	RoleNames     []string  `json:"roleNames"`
	CreatedAt     time.Time `json:"createdAt"`
}

// GroupRequest is the create/update payload for a group
type GroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	IsDefault   bool     `json:"isDefault"`
	RoleIDs     []string `json:"roleIds"`
}

// GetGroups lists groups, optionally filtered by a search term.
func (c *Client) GetGroups(ctx context.Context, search string, opts ...RequestOption) ([]Group, error) {
	var query url.Values
	if search != "" {
		query = url.Values{"search": []string{search}}
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identity/groups", query, nil, opts...)
	if err != nil {
		return nil, err
	}

	var groups []Group
	if err := parseResponse(resp, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroup fetches a single group by id.
func (c *Client) GetGroup(ctx context.Context, groupID string, opts ...RequestOption) (*Group, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identity/groups/"+url.PathEscape(groupID), nil, nil, opts...)
	if err != nil {
		return nil, err
	}

	var group Group
	if err := parseResponse(resp, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateGroup creates a group.
func (c *Client) CreateGroup(ctx context.Context, create GroupRequest, opts ...RequestOption) (*Group, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/identity/groups", nil, create, opts...)
	if err != nil {
		return nil, err
	}

	var group Group
	if err := parseResponse(resp, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup updates a group.
func (c *Client) UpdateGroup(ctx context.Context, groupID string, update GroupRequest, opts ...RequestOption) (*Group, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/api/v1/identity/groups/"+url.PathEscape(groupID), nil, update, opts...)
	if err != nil {
		return nil, err
	}

	var group Group
	if err := parseResponse(resp, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup removes a group.
func (c *Client) DeleteGroup(ctx context.Context, groupID string, opts ...RequestOption) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/v1/identity/groups/"+url.PathEscape(groupID), nil, nil, opts...)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// UserImage is an inline image payload attached to a user record
type UserImage struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// User is the backend's user record
type User struct {
	ID             string `json:"id"`
	UserName       string `json:"userName"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	IsActive       bool   `json:"isActive"`
	EmailConfirmed bool   `json:"emailConfirmed"`
	PhoneNumber    string `json:"phoneNumber"`
	ImageURL       string `json:"imageUrl"`
}

// UserPage is one page of a user search result
type UserPage struct {
	Items       []User `json:"items"`
	PageNumber  int    `json:"pageNumber"`
	PageSize    int    `json:"pageSize"`
	TotalCount  int    `json:"totalCount"`
	TotalPages  int    `json:"totalPages"`
	HasNext     bool   `json:"hasNext"`
	HasPrevious bool   `json:"hasPrevious"`
}

// UserSearchFilter narrows and pages a user search
type UserSearchFilter struct {
	PageNumber     int
	PageSize       int
	Sort           string
	Search         string
	IsActive       *bool
	EmailConfirmed *bool
	RoleID         string
}

func (f UserSearchFilter) query() url.Values {
	q := url.Values{}
	if f.PageNumber > 0 {
		q.Set("PageNumber", strconv.Itoa(f.PageNumber))
	}
	if f.PageSize > 0 {
		q.Set("PageSize", strconv.Itoa(f.PageSize))
	}
	if f.Sort != "" {
		q.Set("Sort", f.Sort)
	}
	if f.Search != "" {
		q.Set("Search", f.Search)
	}
	if f.IsActive != nil {
		q.Set("IsActive", strconv.FormatBool(*f.IsActive))
	}
	if f.EmailConfirmed != nil {
		q.Set("EmailConfirmed", strconv.FormatBool(*f.EmailConfirmed))
	}
	if f.RoleID != "" {
		q.Set("RoleId", f.RoleID)
	}
	return q
}

// UpdateUserRequest is the user update payload
type UpdateUserRequest struct {
	ID                 string     `json:"id"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	PhoneNumber        string     `json:"phoneNumber"`
	Email              string     `json:"email"`
	Image              *UserImage `json:"image,omitempty"`
	DeleteCurrentImage bool       `json:"deleteCurrentImage"`
}

// RegisterUserRequest creates a user account on behalf of an operator
type RegisterUserRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	UserName        string `json:"userName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
}

// RegisterUserResponse is the backend's answer to a registration
type RegisterUserResponse struct {
	UserID string `json:"userId"`
}

// toggleUserStatusRequest flips a user's active flag
type toggleUserStatusRequest struct {
	ActivateUser bool    `json:"activateUser"`
	UserID       *string `json:"userId"`
}

// UserRole is one entry of a user's role assignment list
type UserRole struct {
	RoleID      string `json:"roleId"`
	RoleName    string `json:"roleName"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// AssignUserRolesRequest replaces a user's role assignments
type AssignUserRolesRequest struct {
	UserID    string     `json:"userId"`
	UserRoles []UserRole `json:"userRoles"`
}

// GetUsers lists all users of the current tenant.
func (c *Client) GetUsers(ctx context.Context, opts ...RequestOption) ([]User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identity/users", nil, nil, opts...)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := parseResponse(resp, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SearchUsers pages through users matching the filter.
func (c *Client) SearchUsers(ctx context.Context, filter UserSearchFilter, opts ...RequestOption) (*UserPage, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identity/users/search", filter.query(), nil, opts...)
	if err != nil {
		return nil, err
	}

	var page UserPage
	if err := parseResponse(resp, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, userID string, opts ...RequestOption) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/identity/users/"+url.PathEscape(userID), nil, nil, opts...)
	if err != nil {
		return nil, err
	}

	var user User
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates a user record.
func (c *Client) UpdateUser(ctx context.Context, userID string, update UpdateUserRequest, opts ...RequestOption) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/api/v1/identity/users/"+url.PathEscape(userID), nil, update, opts...)
	if err != nil {
		return nil, err
	}

	var user User
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ToggleUserStatus activates or deactivates a user.
func (c *Client) ToggleUserStatus(ctx context.Context, userID string, activate bool, opts ...RequestOption) error {
	body := toggleUserStatusRequest{ActivateUser: activate, UserID: &userID}
	resp, err := c.doRequest(ctx, http.MethodPatch, "/api/v1/identity/users/"+url.PathEscape(userID), nil, body, opts...)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, userID string, opts ...RequestOption) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/v1/identity/users/"+url.PathEscape(userID), nil, nil, opts...)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

// RegisterUser creates a new user account.
func (c *Client) RegisterUser(ctx context.Context, reg RegisterUserRequest, opts ...RequestOption) (*RegisterUserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/identity/register", nil, reg, opts...)
	if err != nil {
		return nil, err
	}

	var created RegisterUserResponse
	if err := parseResponse(resp, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetUserRoles lists the role assignments of a user.
func (c *Client) GetUserRoles(ctx context.Context, userID string, opts ...RequestOption) ([]UserRole, error) {
	path := fmt.Sprintf("/api/v1/identity/users/%s/roles", url.PathEscape(userID))
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil, opts...)
	if err != nil {
		return nil, err
	}

	var roles []UserRole
	if err := parseResponse(resp, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// AssignUserRoles replaces the role assignments of a user.
func (c *Client) AssignUserRoles(ctx context.Context, userID string, assign AssignUserRolesRequest, opts ...RequestOption) error {
	path := fmt.Sprintf("/api/v1/identity/users/%s/roles", url.PathEscape(userID))
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil, assign, opts...)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claim URIs used by the identity backend. The backend issues tokens with
// WS-* style claim names for email, name and role.
const (
	claimEmail = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
	claimName  = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	claimRole  = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

// User is the profile decoded from an access token. It is derived state:
// it can only change through Login or Logout on the store.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Tenant   string `json:"tenant"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// DecodeUser extracts the user profile from an access token without
// verifying the signature or expiry. The backend is the sole authority on
// token validity; this decode exists purely so the client can display the
// profile and scope requests to the right tenant.
//
// A decode failure means "no profile available", not an authentication
// failure: callers must not invalidate the session because of it.
func DecodeUser(token string) (*User, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("decoding access token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("access token carries no map claims")
	}

	user := &User{
		ID:       stringClaim(claims, "jti"),
		Email:    stringClaim(claims, claimEmail),
		Name:     stringClaim(claims, claimName),
		FullName: stringClaim(claims, "fullName"),
		Role:     stringClaim(claims, claimRole),
		Tenant:   stringClaim(claims, "tenant"),
		ImageURL: stringClaim(claims, "image_url"),
	}
	if user.Tenant == "" {
		user.Tenant = "root"
	}

	return user, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

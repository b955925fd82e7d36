package session

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestDecodeUser(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"jti":      "user-1",
		claimEmail: "a@b.com",
		claimName:  "ada",
		"fullName": "Ada Lovelace",
		claimRole:  "Admin",
		"tenant":   "acme",
		"image_url": "https://img.example.com/ada.png",
	})

	user, err := DecodeUser(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, "a@b.com", user.Email)
	require.Equal(t, "ada", user.Name)
	require.Equal(t, "Ada Lovelace", user.FullName)
	require.Equal(t, "Admin", user.Role)
	require.Equal(t, "acme", user.Tenant)
	require.Equal(t, "https://img.example.com/ada.png", user.ImageURL)
}

func TestDecodeUserTenantDefaultsToRoot(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"jti":      "user-2",
		claimEmail: "b@c.com",
	})

	user, err := DecodeUser(token)
	require.NoError(t, err)
	require.Equal(t, "root", user.Tenant)
}

func TestDecodeUserMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "opaque-token-value"},
		{"bad segments", "a.b"},
		{"garbage base64", "!!!.###.$$$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := DecodeUser(tt.token)
			require.Error(t, err)
			require.Nil(t, user)
		})
	}
}

// Signature validity is never checked: a token signed with an unknown key
// still decodes. The backend owns validity.
func TestDecodeUserIgnoresSignature(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"jti": "user-3"})
	tampered := token[:len(token)-4] + "AAAA"

	user, err := DecodeUser(tampered)
	require.NoError(t, err)
	require.Equal(t, "user-3", user.ID)
}

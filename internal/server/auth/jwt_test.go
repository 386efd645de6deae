package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	key := []byte("test-key")

	token, err := GenerateToken("user-1", models.RoleManager, key, 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := ParseToken(token, key)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, models.RoleManager, role)
}

func TestGenerateToken_EmbedsValidityWindow(t *testing.T) {
	t.Parallel()

	key := []byte("test-key")
	validity := 30 * time.Minute

	before := time.Now()
	token, err := GenerateToken("user-1", models.RoleEmployee, key, validity)
	require.NoError(t, err)
	after := time.Now()

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	})
	require.NoError(t, err)

	iat := claims.IssuedAt.Time
	exp := claims.ExpiresAt.Time

	assert.False(t, iat.Before(before.Truncate(time.Second)))
	assert.False(t, iat.After(after))
	assert.Equal(t, validity, exp.Sub(iat))
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	key := []byte("test-key")

	token, err := GenerateToken("user-1", models.RoleEmployee, key, -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken(token, key)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_Invalid(t *testing.T) {
	t.Parallel()

	key := []byte("test-key")

	valid, err := GenerateToken("user-1", models.RoleEmployee, key, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		key   []byte
	}{
		{"garbage", "not-a-token", key},
		{"wrong key", valid, []byte("other-key")},
		{"empty", "", key},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseToken(tt.token, tt.key)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestParseToken_UnknownRole(t *testing.T) {
	t.Parallel()

	key := []byte("test-key")

	token, err := GenerateToken("user-1", models.Role("root"), key, time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken(token, key)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

package session

import (
	"errors"
	"testing"
	"time"

	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/auth"
	"github.com/staffolio/staffolio/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("session-test-key")

func makeToken(t *testing.T, userID string, role models.Role, validity time.Duration) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, role, testKey, validity)
	require.NoError(t, err)
	return token
}

func TestFulfill_AdoptsDecodedClaims(t *testing.T) {
	t.Parallel()

	s := NewStore()
	token := makeToken(t, "u1", models.RoleManager, 30*time.Minute)

	gen := s.Begin()
	require.NoError(t, s.Fulfill(gen, token))

	claims, ok := s.Claims()
	require.True(t, ok)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt, 5*time.Second)

	assert.Equal(t, token, s.Token())
	assert.True(t, s.Valid())
}

func TestFulfill_MalformedToken(t *testing.T) {
	t.Parallel()

	s := NewStore()
	gen := s.Begin()

	assert.ErrorIs(t, s.Fulfill(gen, "not-a-jwt"), common.ErrInvalidToken)
	assert.False(t, s.Valid())
}

func TestReject_ClearsSession(t *testing.T) {
	t.Parallel()

	s := NewStore()

	gen := s.Begin()
	require.NoError(t, s.Fulfill(gen, makeToken(t, "u1", models.RoleEmployee, time.Hour)))

	gen2 := s.Begin()
	s.Reject(gen2, errors.New("bad credentials"))

	assert.False(t, s.Valid())
	assert.Empty(t, s.Token())
}

func TestStaleCompletionIgnored(t *testing.T) {
	t.Parallel()

	s := NewStore()

	genA := s.Begin()
	genB := s.Begin()

	tokenB := makeToken(t, "winner", models.RoleManager, time.Hour)
	require.NoError(t, s.Fulfill(genB, tokenB))

	// A's completions arrive after B already completed; both are stale.
	require.NoError(t, s.Fulfill(genA, makeToken(t, "loser", models.RoleEmployee, time.Hour)))
	s.Reject(genA, errors.New("late failure"))

	claims, ok := s.Claims()
	require.True(t, ok)
	assert.Equal(t, "winner", claims.UserID)
	assert.Equal(t, tokenB, s.Token())
}

func TestValid_ExpirySkew(t *testing.T) {
	t.Parallel()

	s := NewStore()

	// Well within the skew buffer: treated as expired before any request.
	gen := s.Begin()
	require.NoError(t, s.Fulfill(gen, makeToken(t, "u1", models.RoleEmployee, 2*time.Second)))
	assert.False(t, s.Valid())
	assert.ErrorIs(t, s.RequireAuthenticated(), common.ErrTokenExpired)

	gen = s.Begin()
	require.NoError(t, s.Fulfill(gen, makeToken(t, "u1", models.RoleEmployee, time.Minute)))
	assert.True(t, s.Valid())
	assert.NoError(t, s.RequireAuthenticated())
}

func TestForceLogout(t *testing.T) {
	t.Parallel()

	s := NewStore()

	gen := s.Begin()
	require.NoError(t, s.Fulfill(gen, makeToken(t, "u1", models.RoleEmployee, time.Hour)))

	s.ForceLogout()

	assert.False(t, s.Valid())
	assert.Empty(t, s.Token())
	assert.ErrorIs(t, s.RequireAuthenticated(), common.ErrorUnauthorized)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	s := NewStore()

	assert.ErrorIs(t, s.RequireRole("manager"), common.ErrorUnauthorized)

	gen := s.Begin()
	require.NoError(t, s.Fulfill(gen, makeToken(t, "u1", models.RoleEmployee, time.Hour)))

	assert.ErrorIs(t, s.RequireRole("manager"), common.ErrorForbidden)
	assert.NoError(t, s.RequireRole("employee"))
}

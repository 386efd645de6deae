// Package auth implements the session token codec and password hashing.
// Tokens are HS256-signed JWTs carrying only the subject id and role;
// they are signed, not encrypted, so clients may decode the claims for
// optimistic UI state while the server re-verifies every request.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/models"
)

// Claims — registered claims plus the caller's role. Subject holds the
// user id. Email and username are deliberately not embedded.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

func GenerateToken(userID string, role models.Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Role: role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString and returns
// the embedded subject id and role. An expired-but-well-signed token yields
// common.ErrTokenExpired; anything else that fails verification yields
// common.ErrInvalidToken. Callers rely on the two being distinct.
func ParseToken(tokenString string, secretKey []byte) (string, models.Role, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", common.ErrTokenExpired
		}
		return "", "", common.ErrInvalidToken
	}

	if !token.Valid || !claims.Role.Valid() {
		return "", "", common.ErrInvalidToken
	}

	return claims.Subject, claims.Role, nil
}

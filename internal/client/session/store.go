// Package session holds the client's logical session state: the raw token
// plus the identity optimistically decoded from it. All transitions go
// through the explicit lifecycle (Begin/Fulfill/Reject/ForceLogout) so there
// is exactly one place session state can change.
package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/staffolio/staffolio/internal/common"
)

// expirySkew is subtracted from the token's remaining lifetime before a
// request is sent, so a token about to expire in transit counts as expired
// already.
const expirySkew = 5 * time.Second

// Claims is the identity decoded from the token payload. The decode is
// unverified (the client does not hold the signing key); server truth is
// re-confirmed via /auth/status.
type Claims struct {
	UserID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Store is the session-state container. Login attempts carry a generation
// tag: Begin hands one out, Fulfill/Reject complete it. A completion whose
// generation is older than one already applied is ignored, so concurrent
// in-flight logins resolve last-write-wins by completion order.
type Store struct {
	mu            sync.Mutex
	nextGen       uint64
	lastCompleted uint64
	loggedIn      bool
	token         string
	claims        Claims
}

func NewStore() *Store {
	return &Store{}
}

// Begin marks a login attempt as pending and returns its generation tag.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGen++
	return s.nextGen
}

// Fulfill completes the attempt gen with a token. The token payload is
// decoded into Claims; a token that cannot be decoded fails the attempt.
// Stale completions are ignored and return nil.
func (s *Store) Fulfill(gen uint64, token string) error {
	claims, err := decodeClaims(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.lastCompleted {
		return nil
	}
	s.lastCompleted = gen

	s.loggedIn = true
	s.token = token
	s.claims = claims
	return nil
}

// Reject completes the attempt gen with a failure, clearing the session
// unless a newer completion already won.
func (s *Store) Reject(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.lastCompleted {
		return
	}
	s.lastCompleted = gen

	s.loggedIn = false
	s.token = ""
	s.claims = Claims{}
}

// ForceLogout drops the session unconditionally. Both the proactive expiry
// check and a reactive 401 from the server funnel into this.
func (s *Store) ForceLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loggedIn = false
	s.token = ""
	s.claims = Claims{}
}

// Token returns the raw session token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Claims returns the decoded identity and whether a session exists.
func (s *Store) Claims() (Claims, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims, s.loggedIn
}

// Valid reports whether a session exists and its token still has more than
// expirySkew of lifetime left.
func (s *Store) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn && time.Now().Add(expirySkew).Before(s.claims.ExpiresAt)
}

// RequireAuthenticated is the REPL's pre-flight guard. It distinguishes
// "never logged in" from "token ran out", because the UI reacts differently.
func (s *Store) RequireAuthenticated() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn {
		return common.ErrorUnauthorized
	}
	if !time.Now().Add(expirySkew).Before(s.claims.ExpiresAt) {
		return common.ErrTokenExpired
	}
	return nil
}

// RequireRole gates a command to the given role. This is UI gating only; the
// server re-checks every call.
func (s *Store) RequireRole(role string) error {
	if err := s.RequireAuthenticated(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claims.Role != role {
		return common.ErrorForbidden
	}
	return nil
}

// decodeClaims base64-decodes the token payload without verifying the
// signature and extracts the fields the client steers on.
func decodeClaims(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, fmt.Errorf("%w: malformed token", common.ErrInvalidToken)
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: malformed payload", common.ErrInvalidToken)
	}

	var body struct {
		Sub  string `json:"sub"`
		Role string `json:"role"`
		Iat  int64  `json:"iat"`
		Exp  int64  `json:"exp"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return Claims{}, fmt.Errorf("%w: malformed payload", common.ErrInvalidToken)
	}

	return Claims{
		UserID:    body.Sub,
		Role:      body.Role,
		IssuedAt:  time.Unix(body.Iat, 0),
		ExpiresAt: time.Unix(body.Exp, 0),
	}, nil
}

package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/auth"
	"github.com/staffolio/staffolio/internal/server/models"
	"github.com/staffolio/staffolio/internal/server/services"
)

type ctxKey string

const callerKey ctxKey = "caller"

func withCaller(ctx context.Context, c services.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

func callerFromContext(ctx context.Context) (services.Caller, bool) {
	c, ok := ctx.Value(callerKey).(services.Caller)
	return c, ok
}

// extractToken looks for the session token in the "token" cookie first and
// falls back to the Authorization Bearer header. This order is fixed: the
// cookie is the primary transport, the header exists for clients that keep
// the token client-side.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(common.TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	h := r.Header.Get(common.AuthorizationHeader)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}

	return ""
}

// authenticate is the authorization gate: it verifies the token and attaches
// the resolved caller to the request context. A missing token is 401
// UNAUTHENTICATED; expired and invalid tokens are 401 with distinct codes.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, common.ErrorUnauthorized)
			return
		}

		userID, role, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := withCaller(r.Context(), services.Caller{ID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole gates a subtree to the given roles. It runs after
// authenticate, never before: unauthenticated requests get 401, not 403,
// so role requirements cannot be probed anonymously.
func requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := callerFromContext(r.Context())
			if !ok {
				writeError(w, common.ErrorUnauthorized)
				return
			}
			if _, ok := allowed[caller.Role]; !ok {
				writeError(w, common.ErrorForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs method, path, status and duration for every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

package common

// TokenCookieName is the HTTP-only cookie that carries the session token.
const TokenCookieName = "token"

// AuthorizationHeader carries the token for clients that keep it client-side
// instead of relying on the cookie. Format: "Bearer <token>".
const AuthorizationHeader = "Authorization"

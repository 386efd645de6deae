// Package tokens persists the raw session token across client restarts,
// playing the role a browser's localStorage plays for a web front end.
package tokens

import "context"

type Repository interface {
	// Get returns the cached token, or "" when none is stored.
	Get(ctx context.Context) (string, error)

	// Set stores the token, replacing any previous one.
	Set(ctx context.Context, token string) error

	// Clear removes the cached token. Clearing an empty cache is not an error.
	Clear(ctx context.Context) error
}

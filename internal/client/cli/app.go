// Package cli implements the interactive terminal client: a REPL over the
// backend API with a persistent session restored across restarts.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/staffolio/staffolio/internal/client/api"
	"github.com/staffolio/staffolio/internal/client/config"
	"github.com/staffolio/staffolio/internal/client/repositories/tokens"
	"github.com/staffolio/staffolio/internal/client/session"
	"github.com/staffolio/staffolio/internal/common"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	api     *api.Client
	session *session.Store
	tokens  tokens.Repository
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := tokens.InitDatabase(ctx, c.TokenCachePath)
	if err != nil {
		log.Printf("error initializing token cache: %s", err.Error())
		return nil, err
	}

	store := session.NewStore()
	apiClient := api.NewClient(c.ServerBaseURL, c.RequestTimeout, store.Token)

	app := &App{
		config:  c,
		api:     apiClient,
		session: store,
		tokens:  tokens.NewSQLiteRepository(db),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	app.restoreSession(ctx)

	return app, nil
}

// restoreSession adopts a cached token if it is still plausible: decodable,
// not expired locally, and confirmed by /auth/status. Any failure clears the
// cache so the next start does not retry a dead token.
func (a *App) restoreSession(ctx context.Context) {
	token, err := a.tokens.Get(ctx)
	if err != nil || token == "" {
		return
	}

	gen := a.session.Begin()
	if err := a.session.Fulfill(gen, token); err != nil {
		_ = a.tokens.Clear(ctx)
		return
	}

	if !a.session.Valid() {
		a.dropSession(ctx)
		return
	}

	user, err := a.api.Status(ctx)
	if err != nil {
		a.dropSession(ctx)
		return
	}

	fmt.Fprintf(a.out, "Restored session for %s (%s)\n", user.Username, user.Role)
}

// dropSession clears both the in-memory session and the on-disk cache.
func (a *App) dropSession(ctx context.Context) {
	a.session.ForceLogout()
	_ = a.tokens.Clear(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.Valid()
}

func (a *App) role() string {
	claims, ok := a.session.Claims()
	if !ok {
		return ""
	}
	return claims.Role
}

// reportError prints a friendly message for an API error. Authorization
// failures also drop the session, so the proactive and reactive expiry paths
// end in the same state.
func (a *App) reportError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintln(a.out, "Server is unavailable, try again later")
	case errors.Is(err, common.ErrTokenExpired):
		a.dropSession(ctx)
		fmt.Fprintln(a.out, "Session expired, please log in again")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		a.dropSession(ctx)
		fmt.Fprintln(a.out, "Not logged in")
	case errors.Is(err, common.ErrorForbidden):
		fmt.Fprintln(a.out, "Forbidden: this command needs the manager role")
	case errors.Is(err, common.ErrorNotFound):
		fmt.Fprintln(a.out, "Not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		fmt.Fprintln(a.out, "Already exists")
	case errors.Is(err, common.ErrorValidation):
		fmt.Fprintf(a.out, "Invalid input: %s\n", err.Error())
	default:
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
	}
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

// status renders the prompt segment: the user id and role when logged in.
func (a *App) status() string {
	claims, ok := a.session.Claims()
	if !ok || !a.session.Valid() {
		return "logged out"
	}
	return fmt.Sprintf("%s:%s", claims.UserID, claims.Role)
}

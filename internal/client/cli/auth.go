package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffolio/staffolio/internal/client/api"
)

// Register creates an account interactively. A fresh account is not logged
// in; the user logs in as a separate step.
func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	role, err := GetSimpleText(a.reader, "Enter role (manager/employee, empty for employee)", a.out)
	if err != nil {
		return err
	}

	user, err := a.api.Register(ctx, username, email, string(password), role)
	if err != nil {
		a.reportError(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (%s), you can log in now\n", user.Username, user.Role)
	return nil
}

// Login authenticates and adopts the returned token through the session
// lifecycle, then persists it for the next start.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	gen := a.session.Begin()

	token, user, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		a.session.Reject(gen, err)
		a.reportError(ctx, err)
		return err
	}

	if err := a.session.Fulfill(gen, token); err != nil {
		a.reportError(ctx, err)
		return err
	}

	if err := a.tokens.Set(ctx, token); err != nil {
		fmt.Fprintln(a.out, "Warning: session will not survive a restart")
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Username, user.Role)
	return nil
}

// Logout drops the session locally and tells the server to clear its
// cookie. The local drop happens regardless of whether the server call
// succeeds.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)

	a.dropSession(ctx)
	fmt.Fprintln(a.out, "Logged out")

	if err != nil && errors.Is(err, api.ErrUnavailable) {
		fmt.Fprintln(a.out, "(server unreachable, session cleared locally)")
	}
	return nil
}

// Status re-confirms the session with the server and prints the identity.
func (a *App) Status(ctx context.Context) error {
	if err := a.session.RequireAuthenticated(); err != nil {
		a.reportError(ctx, err)
		return err
	}

	user, err := a.api.Status(ctx)
	if err != nil {
		a.reportError(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s <%s> role=%s id=%s\n",
		user.Username, user.Email, user.Role, user.ID)
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffolio/staffolio/internal/client/api"
	"github.com/staffolio/staffolio/internal/common"
)

// Employees lists the directory with portfolio existence flags. Managers only.
func (a *App) Employees(ctx context.Context) error {
	if err := a.session.RequireRole(api.RoleManager); err != nil {
		a.reportError(ctx, err)
		return err
	}

	employees, err := a.api.ListEmployees(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Fprintln(a.out, "No employees registered yet")
			return nil
		}
		a.reportError(ctx, err)
		return err
	}

	for _, e := range employees {
		marker := "-"
		if e.HasPortfolio {
			marker = "+"
		}
		fmt.Fprintf(a.out, "[%s] %s  %s <%s>\n", marker, e.ID, e.Username, e.Email)
	}
	return nil
}

// Employee shows a single directory entry. Managers only.
func (a *App) Employee(ctx context.Context, id string) error {
	if err := a.session.RequireRole(api.RoleManager); err != nil {
		a.reportError(ctx, err)
		return err
	}

	if id == "" {
		fmt.Fprintln(a.out, "Usage: employee <id>")
		return nil
	}

	e, err := a.api.GetEmployee(ctx, id)
	if err != nil {
		a.reportError(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "%s <%s> id=%s registered=%s\n",
		e.Username, e.Email, e.ID, e.CreatedAt.Format("2006-01-02"))
	return nil
}

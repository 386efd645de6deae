package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/staffolio/staffolio/internal/client/api"
	"github.com/staffolio/staffolio/internal/common"
)

// portfolioFieldPrompts are asked in order when building a portfolio form.
// List fields are entered as JSON arrays, matching the wire format.
var portfolioFieldPrompts = []struct {
	name   string
	prompt string
}{
	{"name", "Enter display name"},
	{"position", "Enter position"},
	{"bio", "Enter bio"},
	{"education", `Enter education as a JSON array, e.g. [{"school":"MIT","degree":"BS","year":2020}]`},
	{"experience", `Enter experience as a JSON array, e.g. [{"company":"Acme","role":"Engineer","duration":"2 years"}]`},
	{"projects", `Enter projects as a JSON array, e.g. [{"name":"Staffolio","description":"portfolio app"}]`},
	{"skills", `Enter skills as a JSON array, e.g. ["Go","SQL"]`},
}

// collectPortfolioFields prompts for the form fields. When skipEmpty is set
// (update mode), an empty answer omits the field so the server keeps its
// current value; otherwise empty answers are sent as-is and validated
// server-side.
func (a *App) collectPortfolioFields(skipEmpty bool) (map[string]string, error) {
	fields := make(map[string]string)

	for _, f := range portfolioFieldPrompts {
		prompt := f.prompt
		if skipEmpty {
			prompt += " (empty to keep current)"
		}
		value, err := GetSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return nil, err
		}
		if value == "" && skipEmpty {
			continue
		}
		fields[f.name] = value
	}

	return fields, nil
}

// collectPicture prompts for an optional picture path and loads the file.
func (a *App) collectPicture() (*api.PictureFile, error) {
	path, err := GetSimpleText(a.reader, "Enter picture file path (empty to skip)", a.out)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read picture: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &api.PictureFile{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (a *App) printPortfolio(p *api.Portfolio) {
	fmt.Fprintf(a.out, "%s — %s\n", p.Name, p.Position)
	fmt.Fprintf(a.out, "  id=%s employee=%s\n", p.ID, p.EmployeeID)
	fmt.Fprintf(a.out, "  bio: %s\n", p.Bio)
	if p.Picture != "" {
		fmt.Fprintf(a.out, "  picture: %s\n", p.Picture)
	}
	for _, e := range p.Education {
		fmt.Fprintf(a.out, "  education: %s, %s (%d)\n", e.School, e.Degree, e.Year)
	}
	for _, e := range p.Experience {
		fmt.Fprintf(a.out, "  experience: %s, %s (%s)\n", e.Company, e.Role, e.Duration)
	}
	for _, p2 := range p.Projects {
		fmt.Fprintf(a.out, "  project: %s — %s\n", p2.Name, p2.Description)
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(a.out, "  skills: %s\n", strings.Join(p.Skills, ", "))
	}
}

// Portfolio shows the portfolio of employeeID, defaulting to the caller's
// own. An absent portfolio is an expected state, not an error banner.
func (a *App) Portfolio(ctx context.Context, employeeID string) error {
	if err := a.session.RequireAuthenticated(); err != nil {
		a.reportError(ctx, err)
		return err
	}

	if employeeID == "" {
		claims, _ := a.session.Claims()
		employeeID = claims.UserID
	}

	p, err := a.api.GetPortfolio(ctx, employeeID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Fprintln(a.out, "No portfolio yet")
			return nil
		}
		a.reportError(ctx, err)
		return err
	}

	a.printPortfolio(p)
	return nil
}

// Portfolios lists every portfolio with its owner. Managers only.
func (a *App) Portfolios(ctx context.Context) error {
	if err := a.session.RequireRole(api.RoleManager); err != nil {
		a.reportError(ctx, err)
		return err
	}

	list, err := a.api.ListPortfolios(ctx)
	if err != nil {
		a.reportError(ctx, err)
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No portfolios yet")
		return nil
	}

	for _, p := range list {
		fmt.Fprintf(a.out, "%s — %s (owner: %s <%s>)\n",
			p.Name, p.Position, p.Employee.Username, p.Employee.Email)
	}
	return nil
}

// CreatePortfolio builds a portfolio for an employee. Managers only.
func (a *App) CreatePortfolio(ctx context.Context) error {
	if err := a.session.RequireRole(api.RoleManager); err != nil {
		a.reportError(ctx, err)
		return err
	}

	employeeID, err := GetSimpleText(a.reader, "Enter employee id", a.out)
	if err != nil {
		return err
	}

	fields, err := a.collectPortfolioFields(false)
	if err != nil {
		return err
	}
	fields["employeeId"] = employeeID

	picture, err := a.collectPicture()
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	p, err := a.api.CreatePortfolio(ctx, fields, picture)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			fmt.Fprintln(a.out, "This employee already has a portfolio")
			return err
		}
		a.reportError(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "Created portfolio %s\n", p.ID)
	return nil
}

// UpdatePortfolio partially updates a portfolio: empty answers keep the
// current values. Managers only.
func (a *App) UpdatePortfolio(ctx context.Context, id string) error {
	if err := a.session.RequireRole(api.RoleManager); err != nil {
		a.reportError(ctx, err)
		return err
	}

	if id == "" {
		fmt.Fprintln(a.out, "Usage: update-portfolio <id>")
		return nil
	}

	fields, err := a.collectPortfolioFields(true)
	if err != nil {
		return err
	}

	picture, err := a.collectPicture()
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	p, err := a.api.UpdatePortfolio(ctx, id, fields, picture)
	if err != nil {
		a.reportError(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "Updated portfolio %s\n", p.ID)
	return nil
}

// DeletePortfolio removes a portfolio permanently. Managers only.
func (a *App) DeletePortfolio(ctx context.Context, id string) error {
	if err := a.session.RequireRole(api.RoleManager); err != nil {
		a.reportError(ctx, err)
		return err
	}

	if id == "" {
		fmt.Fprintln(a.out, "Usage: delete-portfolio <id>")
		return nil
	}

	if err := a.api.DeletePortfolio(ctx, id); err != nil {
		a.reportError(ctx, err)
		return err
	}

	fmt.Fprintln(a.out, "Deleted")
	return nil
}

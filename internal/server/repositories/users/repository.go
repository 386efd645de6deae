// Package users provides storage for user accounts.
package users

import (
	"context"

	"github.com/staffolio/staffolio/internal/server/models"
)

// EmployeeWithPortfolio annotates an employee with whether a portfolio
// exists for them.
type EmployeeWithPortfolio struct {
	models.User
	HasPortfolio bool `json:"hasPortfolio"`
}

type Repository interface {
	// Create persists the user. A duplicate email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetEmployee resolves id only when the user exists AND has the
	// employee role; otherwise common.ErrorNotFound.
	GetEmployee(ctx context.Context, id string) (*models.User, error)
	// ListEmployeesWithPortfolio returns every employee-role user together
	// with portfolio existence, computed in a single query.
	ListEmployeesWithPortfolio(ctx context.Context) ([]*EmployeeWithPortfolio, error)
}

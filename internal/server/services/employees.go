package services

import (
	"context"
	"errors"

	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/models"
	"github.com/staffolio/staffolio/internal/server/repositories/users"
)

type EmployeeService struct {
	repo users.Repository
}

func NewEmployeeService(repo users.Repository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

// List returns every employee annotated with portfolio existence. Managers
// only. An empty directory is common.ErrorNotFound, which the HTTP layer
// maps to 404.
func (s *EmployeeService) List(ctx context.Context, caller Caller) ([]*users.EmployeeWithPortfolio, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}

	employees, err := s.repo.ListEmployeesWithPortfolio(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if len(employees) == 0 {
		return nil, common.ErrorNotFound
	}

	return employees, nil
}

// Get resolves a single employee by id. Managers only; a user that exists
// but is not an employee is reported as not found.
func (s *EmployeeService) Get(ctx context.Context, caller Caller, id string) (*models.User, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}

	employee, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	return employee, nil
}

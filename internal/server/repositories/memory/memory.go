// Package memory provides in-memory implementations of the user and
// portfolio repositories. They honor the same contracts as the Postgres
// implementations, including uniqueness conflicts under concurrent writers,
// and back the HTTP-level tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/models"
	"github.com/staffolio/staffolio/internal/server/repositories/users"
)

// Store holds the shared state behind both repositories.
type Store struct {
	mu         sync.Mutex
	users      map[string]*models.User      // by id
	portfolios map[string]*models.Portfolio // by id
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*models.User),
		portfolios: make(map[string]*models.Portfolio),
	}
}

// Users returns the users.Repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Portfolios returns the portfolios.Repository view of the store.
func (s *Store) Portfolios() *PortfolioRepository { return &PortfolioRepository{s: s} }

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	clone := *user
	r.s.users[user.ID] = &clone
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepository) GetEmployee(ctx context.Context, id string) (*models.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleEmployee {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *UserRepository) ListEmployeesWithPortfolio(_ context.Context) ([]*users.EmployeeWithPortfolio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	hasPortfolio := make(map[string]bool, len(r.s.portfolios))
	for _, p := range r.s.portfolios {
		hasPortfolio[p.EmployeeID] = true
	}

	var result []*users.EmployeeWithPortfolio
	for _, u := range r.s.users {
		if u.Role != models.RoleEmployee {
			continue
		}
		result = append(result, &users.EmployeeWithPortfolio{
			User:         *u,
			HasPortfolio: hasPortfolio[u.ID],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

type PortfolioRepository struct {
	s *Store
}

func clonePortfolio(p *models.Portfolio) *models.Portfolio {
	clone := *p
	clone.Education = append([]models.EducationEntry{}, p.Education...)
	clone.Experience = append([]models.ExperienceEntry{}, p.Experience...)
	clone.Projects = append([]models.ProjectEntry{}, p.Projects...)
	clone.Skills = append([]string{}, p.Skills...)
	return &clone
}

func (r *PortfolioRepository) Create(_ context.Context, p *models.Portfolio) (*models.Portfolio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Same invariant the UNIQUE constraint enforces in Postgres: checked
	// under the lock so concurrent creates see exactly one success.
	for _, existing := range r.s.portfolios {
		if existing.EmployeeID == p.EmployeeID {
			return nil, common.ErrorAlreadyExists
		}
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	r.s.portfolios[p.ID] = clonePortfolio(p)
	return p, nil
}

func (r *PortfolioRepository) GetByID(_ context.Context, id string) (*models.Portfolio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.portfolios[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clonePortfolio(p), nil
}

func (r *PortfolioRepository) GetByEmployeeID(_ context.Context, employeeID string) (*models.Portfolio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.portfolios {
		if p.EmployeeID == employeeID {
			return clonePortfolio(p), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *PortfolioRepository) Update(_ context.Context, p *models.Portfolio) (*models.Portfolio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.portfolios[p.ID]; !ok {
		return nil, common.ErrorNotFound
	}

	r.s.portfolios[p.ID] = clonePortfolio(p)
	return p, nil
}

func (r *PortfolioRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.portfolios[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.portfolios, id)
	return nil
}

func (r *PortfolioRepository) ListAll(_ context.Context) ([]*models.PortfolioWithOwner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*models.PortfolioWithOwner
	for _, p := range r.s.portfolios {
		item := &models.PortfolioWithOwner{Portfolio: *clonePortfolio(p)}
		if owner, ok := r.s.users[p.EmployeeID]; ok {
			item.Employee = models.EmployeeSummary{Username: owner.Username, Email: owner.Email}
		}
		result = append(result, item)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Employee.Username != result[j].Employee.Username {
			return result[i].Employee.Username < result[j].Employee.Username
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

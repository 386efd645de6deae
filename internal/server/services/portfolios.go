package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/models"
	"github.com/staffolio/staffolio/internal/server/repositories/portfolios"
	"github.com/staffolio/staffolio/internal/server/repositories/users"
	"github.com/staffolio/staffolio/internal/server/storage"
)

// PictureUpload carries raw picture bytes bound for the picture store.
type PictureUpload struct {
	ContentType string
	Data        []byte
}

// CreatePortfolioInput names the owning employee via EmployeeID — the one
// canonical field; name, position and bio are required.
type CreatePortfolioInput struct {
	EmployeeID string
	Name       string
	Position   string
	Bio        string
	Education  []models.EducationEntry
	Experience []models.ExperienceEntry
	Projects   []models.ProjectEntry
	Skills     []string
	Picture    *PictureUpload
}

// UpdatePortfolioInput replaces only the provided top-level fields. A
// provided list field replaces the entire list; there is no element-level
// merge. A nil Picture keeps the existing reference.
type UpdatePortfolioInput struct {
	Name       *string
	Position   *string
	Bio        *string
	Education  *[]models.EducationEntry
	Experience *[]models.ExperienceEntry
	Projects   *[]models.ProjectEntry
	Skills     *[]string
	Picture    *PictureUpload
}

type PortfolioService struct {
	repo     portfolios.Repository
	users    users.Repository
	pictures storage.PictureStore
}

func NewPortfolioService(repo portfolios.Repository, users users.Repository, pictures storage.PictureStore) *PortfolioService {
	return &PortfolioService{repo: repo, users: users, pictures: pictures}
}

func (s *PortfolioService) uploadPicture(ctx context.Context, picture *PictureUpload) (string, error) {
	url, err := s.pictures.Upload(ctx, picture.ContentType, picture.Data)
	if err != nil {
		return "", common.ErrorInternal
	}
	return url, nil
}

// Create transitions an employee from NO_PORTFOLIO to HAS_PORTFOLIO.
// Managers only. A second create for the same employee is a conflict, not a
// silent update; the repository's uniqueness guarantee makes that hold even
// when two creates race past the pre-check.
func (s *PortfolioService) Create(ctx context.Context, caller Caller, in CreatePortfolioInput) (*models.Portfolio, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}

	if in.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employeeId is required", common.ErrorValidation)
	}
	if in.Name == "" || in.Position == "" || in.Bio == "" {
		return nil, fmt.Errorf("%w: name, position and bio are required", common.ErrorValidation)
	}

	if _, err := s.users.GetEmployee(ctx, in.EmployeeID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if _, err := s.repo.GetByEmployeeID(ctx, in.EmployeeID); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	p := &models.Portfolio{
		EmployeeID: in.EmployeeID,
		Name:       in.Name,
		Position:   in.Position,
		Bio:        in.Bio,
		Education:  in.Education,
		Experience: in.Experience,
		Projects:   in.Projects,
		Skills:     in.Skills,
	}

	if in.Picture != nil {
		url, err := s.uploadPicture(ctx, in.Picture)
		if err != nil {
			return nil, err
		}
		p.Picture = url
	}

	p, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, common.ErrorInternal
	}

	return p, nil
}

// Update applies a partial update. Managers only.
func (s *PortfolioService) Update(ctx context.Context, caller Caller, id string, in UpdatePortfolioInput) (*models.Portfolio, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Position != nil {
		p.Position = *in.Position
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.Education != nil {
		p.Education = *in.Education
	}
	if in.Experience != nil {
		p.Experience = *in.Experience
	}
	if in.Projects != nil {
		p.Projects = *in.Projects
	}
	if in.Skills != nil {
		p.Skills = *in.Skills
	}

	if p.Name == "" || p.Position == "" || p.Bio == "" {
		return nil, fmt.Errorf("%w: name, position and bio must not be empty", common.ErrorValidation)
	}

	if in.Picture != nil {
		url, err := s.uploadPicture(ctx, in.Picture)
		if err != nil {
			return nil, err
		}
		p.Picture = url
	}

	p, err = s.repo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	return p, nil
}

// Delete removes a portfolio permanently, transitioning the employee back
// to NO_PORTFOLIO. Managers only.
func (s *PortfolioService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := requireManager(caller); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	return nil
}

// GetByEmployeeID returns the portfolio owned by employeeID. Allowed for the
// owning employee and for any manager; an employee asking about another
// employee is forbidden. An absent portfolio is common.ErrorNotFound — an
// expected, recoverable state the client renders as "no portfolio yet".
func (s *PortfolioService) GetByEmployeeID(ctx context.Context, caller Caller, employeeID string) (*models.Portfolio, error) {
	if caller.Role == models.RoleEmployee && caller.ID != employeeID {
		return nil, common.ErrorForbidden
	}

	p, err := s.repo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	return p, nil
}

// ListAll returns every portfolio joined with the owner identity summary.
// Managers only.
func (s *PortfolioService) ListAll(ctx context.Context, caller Caller) ([]*models.PortfolioWithOwner, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}

	result, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return result, nil
}

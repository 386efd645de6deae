// Package portfolios provides storage for employee portfolios.
package portfolios

import (
	"context"

	"github.com/staffolio/staffolio/internal/server/models"
)

type Repository interface {
	// Create persists the portfolio. A portfolio already existing for the
	// employee yields common.ErrorAlreadyExists; the store's uniqueness
	// constraint makes this hold under concurrent creates as well.
	Create(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error)
	GetByID(ctx context.Context, id string) (*models.Portfolio, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*models.Portfolio, error)
	// Update replaces the stored row with p. common.ErrorNotFound when the
	// id does not resolve.
	Update(ctx context.Context, p *models.Portfolio) (*models.Portfolio, error)
	Delete(ctx context.Context, id string) error
	// ListAll returns every portfolio with the owner's identity summary.
	ListAll(ctx context.Context) ([]*models.PortfolioWithOwner, error)
}

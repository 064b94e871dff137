// Package applications persists job applications.
package applications

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Application) (*models.Application, error)
	GetByID(ctx context.Context, id string) (*models.Application, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Application, error)
	ListByOpportunity(ctx context.Context, opportunityID string) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	// Exists reports whether userID already applied to opportunityID.
	Exists(ctx context.Context, userID, opportunityID string) (bool, error)
}

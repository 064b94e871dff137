// Package proposals persists tender proposals.
package proposals

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Proposal) (*models.Proposal, error)
	GetByID(ctx context.Context, id string) (*models.Proposal, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Proposal, error)
	ListByOpportunity(ctx context.Context, opportunityID string) ([]*models.Proposal, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	Exists(ctx context.Context, userID, opportunityID string) (bool, error)
}

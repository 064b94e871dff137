// Package interests persists announcement registrations.
package interests

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, i *models.Interest) (*models.Interest, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Interest, error)
	ListByOpportunity(ctx context.Context, opportunityID string) ([]*models.Interest, error)
	Exists(ctx context.Context, userID, opportunityID string) (bool, error)
}

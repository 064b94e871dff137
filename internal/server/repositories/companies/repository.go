// Package companies persists employer company profiles.
package companies

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Company) (*models.Company, error)
	GetByID(ctx context.Context, id string) (*models.Company, error)
	GetByOwner(ctx context.Context, ownerID string) (*models.Company, error)
	Update(ctx context.Context, c *models.Company) error
	List(ctx context.Context, limit, offset int) ([]*models.Company, error)
}

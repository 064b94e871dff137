// Package categories persists the admin-managed opportunity categories.
package categories

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, name, icon string) (*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Update(ctx context.Context, id, name, icon string) error
	Delete(ctx context.Context, id string) error
	// ListWithCounts returns every category with the number of visible
	// opportunities filed under it.
	ListWithCounts(ctx context.Context) ([]*models.Category, error)
}

// Package opportunities persists listings of every post type in a single
// table.
package opportunities

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

// Sort orders a listing.
type Sort string

const (
	SortNewest   Sort = "newest"
	SortDeadline Sort = "deadline"
)

// Filter narrows List. Nil and zero fields do not filter.
type Filter struct {
	PostType   *models.PostType
	CategoryID *string
	Status     *models.ModerationStatus
	PostedBy   *string
	// Location and Keyword are case-insensitive substring matches; Keyword
	// covers title and description.
	Location   string
	Keyword    string
	ActiveOnly bool
	Sort       Sort
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, o *models.Opportunity) (*models.Opportunity, error)
	GetByID(ctx context.Context, id string) (*models.Opportunity, error)
	Update(ctx context.Context, o *models.Opportunity) error
	UpdateModeration(ctx context.Context, id string, status models.ModerationStatus, notes *string) error
	SetFeatured(ctx context.Context, id string, featured bool) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]*models.Opportunity, error)
	CountByStatus(ctx context.Context) (map[models.ModerationStatus]int, error)
}

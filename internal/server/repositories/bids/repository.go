// Package bids persists auction bids and their standing.
package bids

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

// Repository methods that rank bids are meant to run inside one transaction,
// starting with LockAuction.
type Repository interface {
	Create(ctx context.Context, b *models.Bid) (*models.Bid, error)
	GetByID(ctx context.Context, id string) (*models.Bid, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Bid, error)
	ListByOpportunity(ctx context.Context, opportunityID string) ([]*models.Bid, error)
	// LockAuction serializes bidding on one opportunity until the
	// transaction ends.
	LockAuction(ctx context.Context, opportunityID string) error
	// HighestAmount returns the highest bid amount so far, 0 if none.
	HighestAmount(ctx context.Context, opportunityID string) (int64, error)
	// Outbid demotes the current winning bids and returns their bidders.
	Outbid(ctx context.Context, opportunityID string) ([]string, error)
	// Award marks bidID won and every other bid lost, returning all bidders.
	Award(ctx context.Context, opportunityID, bidID string) ([]string, error)
}

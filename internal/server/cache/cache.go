// Package cache keeps per-user claim lists out of the database on repeated
// dashboard loads.
package cache

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

// ClaimCache stores MyClaims by user id. A miss is reported as (nil, false,
// nil); errors are for the caller to log, never to fail the request.
type ClaimCache interface {
	Get(ctx context.Context, userID string) (*models.MyClaims, bool, error)
	Set(ctx context.Context, userID string, claims *models.MyClaims) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// Nop never hits. Used when no Redis URL is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.MyClaims, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, *models.MyClaims) error        { return nil }
func (Nop) Invalidate(context.Context, ...string) error                { return nil }

// Package users provides persistence for marketplace accounts.
package users

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	LinkExternalID(ctx context.Context, userID, externalID string) error
	UpdateDisplay(ctx context.Context, userID, fullName, photoURL string) error
	UpdateRole(ctx context.Context, userID string, role models.Role) error
	SetPasswordHash(ctx context.Context, userID, hash string) error
	List(ctx context.Context, role *models.Role, limit, offset int) ([]*models.User, error)
	CountByRole(ctx context.Context) (map[models.Role]int, error)
	Delete(ctx context.Context, userID string) error
}

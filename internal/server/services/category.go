package services

import (
	"context"
	"database/sql"

	"github.com/businessinrwanda/marketplace/internal/server/models"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/repomanager"
)

// CategoryService is the public read side of categories; writes live in
// ModerationService.
type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: db, repomanager: m}
}

// List returns all categories with their count of visible opportunities.
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	list, err := s.repomanager.Categories(s.db).ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Category{}
	}
	return list, nil
}

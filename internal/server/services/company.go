package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/models"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/repomanager"
)

const minFoundedYear = 1800

type CompanyInput struct {
	Name        string
	Industry    string
	Location    string
	LogoURL     string
	Description string
	Size        string
	FoundedYear *int
	Website     string
}

type CompanyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCompanyService(db *sql.DB, m repomanager.RepositoryManager) *CompanyService {
	return &CompanyService{db: db, repomanager: m}
}

func validateCompany(in CompanyInput) error {
	ve := &common.ValidationError{}
	if blank(in.Name) {
		ve.Add("name", "is required")
	}
	if y := in.FoundedYear; y != nil && (*y < minFoundedYear || *y > now().Year()) {
		ve.Add("foundedYear", fmt.Sprintf("must be between %d and %d", minFoundedYear, now().Year()))
	}
	return ve.OrNil()
}

func applyCompany(c *models.Company, in CompanyInput) {
	c.Name = strings.TrimSpace(in.Name)
	c.Industry = in.Industry
	c.Location = in.Location
	c.LogoURL = in.LogoURL
	c.Description = in.Description
	c.Size = in.Size
	c.FoundedYear = in.FoundedYear
	c.Website = in.Website
}

// Create onboards an employer's company. Each employer has at most one.
func (s *CompanyService) Create(ctx context.Context, user *models.User, in CompanyInput) (*models.Company, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if user.Role != models.RoleEmployer {
		return nil, fmt.Errorf("%w: only employers have a company profile", common.ErrorForbidden)
	}
	if err := validateCompany(in); err != nil {
		return nil, err
	}

	c := &models.Company{OwnerID: user.ID}
	applyCompany(c, in)
	return s.repomanager.Companies(s.db).Create(ctx, c)
}

func (s *CompanyService) GetMine(ctx context.Context, user *models.User) (*models.Company, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	return s.repomanager.Companies(s.db).GetByOwner(ctx, user.ID)
}

func (s *CompanyService) UpdateMine(ctx context.Context, user *models.User, in CompanyInput) (*models.Company, error) {
	c, err := s.GetMine(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := validateCompany(in); err != nil {
		return nil, err
	}
	applyCompany(c, in)
	if err := s.repomanager.Companies(s.db).Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) Get(ctx context.Context, id string) (*models.Company, error) {
	return s.repomanager.Companies(s.db).GetByID(ctx, id)
}

func (s *CompanyService) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	limit, offset = clampPage(limit, offset)
	list, err := s.repomanager.Companies(s.db).List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Company{}
	}
	return list, nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/logging"
	"github.com/businessinrwanda/marketplace/internal/server/models"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/opportunities"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/repomanager"
)

// Stats feeds the admin dashboard.
type Stats struct {
	Opportunities map[models.ModerationStatus]int `json:"opportunities"`
	Users         map[models.Role]int             `json:"users"`
}

// ModerationService holds every admin-only operation. Each method checks
// the caller before touching any state.
type ModerationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewModerationService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ModerationService {
	return &ModerationService{db: db, repomanager: m, log: log.With("module", "moderation")}
}

func (s *ModerationService) opportunities() opportunities.Repository {
	return s.repomanager.Opportunities(s.db)
}

func (s *ModerationService) setStatus(ctx context.Context, admin *models.User, id string, status models.ModerationStatus, notes *string) (*models.Opportunity, error) {
	repo := s.opportunities()
	if err := repo.UpdateModeration(ctx, id, status, notes); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "opportunity moderated", "opportunity_id", id, "status", status, "admin_id", admin.ID)
	return repo.GetByID(ctx, id)
}

// Approve publishes the opportunity. Approving twice is fine.
func (s *ModerationService) Approve(ctx context.Context, admin *models.User, id string, notes *string) (*models.Opportunity, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if notes != nil && blank(*notes) {
		notes = nil
	}
	return s.setStatus(ctx, admin, id, models.StatusApproved, notes)
}

// Reject requires a reason, shown to the poster.
func (s *ModerationService) Reject(ctx context.Context, admin *models.User, id string, notes string) (*models.Opportunity, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, common.NewValidationError("adminNotes", "a rejection reason is required")
	}
	return s.setStatus(ctx, admin, id, models.StatusRejected, &notes)
}

func (s *ModerationService) SetFeatured(ctx context.Context, admin *models.User, id string, featured bool) (*models.Opportunity, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	repo := s.opportunities()
	if err := repo.SetFeatured(ctx, id, featured); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (s *ModerationService) SetActive(ctx context.Context, admin *models.User, id string, active bool) (*models.Opportunity, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	repo := s.opportunities()
	if err := repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// Delete is irreversible.
func (s *ModerationService) Delete(ctx context.Context, admin *models.User, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if err := s.opportunities().Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "opportunity deleted", "opportunity_id", id, "admin_id", admin.ID)
	return nil
}

// Queue lists opportunities in any state for review.
func (s *ModerationService) Queue(ctx context.Context, admin *models.User, q ListQuery) ([]*models.Opportunity, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	f, err := parseListQuery(q)
	if err != nil {
		return nil, err
	}
	list, err := s.opportunities().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Opportunity{}
	}
	return list, nil
}

func (s *ModerationService) Stats(ctx context.Context, admin *models.User) (*Stats, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	opp, err := s.opportunities().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.repomanager.Users(s.db).CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Opportunities: opp, Users: users}, nil
}

func (s *ModerationService) CreateCategory(ctx context.Context, admin *models.User, name, icon string) (*models.Category, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	c, err := s.repomanager.Categories(s.db).Create(ctx, name, icon)
	if err != nil {
		return nil, categoryConflict(err)
	}
	return c, nil
}

func (s *ModerationService) UpdateCategory(ctx context.Context, admin *models.User, id, name, icon string) (*models.Category, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	repo := s.repomanager.Categories(s.db)
	if err := repo.Update(ctx, id, name, icon); err != nil {
		return nil, categoryConflict(err)
	}
	return repo.GetByID(ctx, id)
}

func (s *ModerationService) DeleteCategory(ctx context.Context, admin *models.User, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	return s.repomanager.Categories(s.db).Delete(ctx, id)
}

func categoryConflict(err error) error {
	if errors.Is(err, common.ErrorConflict) {
		return fmt.Errorf("%w: a category with this name exists", common.ErrorConflict)
	}
	return err
}

func (s *ModerationService) ListUsers(ctx context.Context, admin *models.User, role string, limit, offset int) ([]*models.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	var filter *models.Role
	if role != "" {
		r, err := models.ParseRole(role)
		if err != nil {
			return nil, common.NewValidationError("role", "unknown role")
		}
		filter = &r
	}
	limit, offset = clampPage(limit, offset)
	list, err := s.repomanager.Users(s.db).List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.User{}
	}
	return list, nil
}

// UpdateUserRole changes a user's role. Admins cannot demote themselves.
func (s *ModerationService) UpdateUserRole(ctx context.Context, admin *models.User, userID, role string) (*models.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, common.NewValidationError("role", "unknown role")
	}
	if userID == admin.ID && r != models.RoleAdmin {
		return nil, common.NewValidationError("role", "you cannot change your own role")
	}
	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateRole(ctx, userID, r); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user role changed", "user_id", userID, "role", r, "admin_id", admin.ID)
	return repo.GetByID(ctx, userID)
}

// DeleteUser removes a user with everything they own. Admins cannot delete
// themselves.
func (s *ModerationService) DeleteUser(ctx context.Context, admin *models.User, userID string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if userID == admin.ID {
		return common.NewValidationError("id", "you cannot delete your own account")
	}
	if err := s.repomanager.Users(s.db).Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "user_id", userID, "admin_id", admin.ID)
	return nil
}

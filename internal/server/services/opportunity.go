package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/models"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/opportunities"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/repomanager"
)

// OpportunityInput is the editable part of an opportunity. CompanyID and
// CompanyName are honored for admins only; employers always post as their
// own company.
type OpportunityInput struct {
	Title            string
	Description      string
	Requirements     string
	Responsibilities *string
	Location         string
	EmploymentType   *string
	PostType         string
	CategoryID       *string
	CompanyID        *string
	CompanyName      *string

	ApplicationDeadline *time.Time
	AuctionDate         *time.Time
	ViewingDates        []string
	AuctionItems        []string
	TenderDeadline      *time.Time
	TenderRequirements  []string
	TenderDocuments     []string
	AdditionalData      map[string]any
}

// ListQuery holds the raw listing filters as they arrive from the query
// string.
type ListQuery struct {
	PostType   string
	CategoryID string
	Location   string
	Keyword    string
	Status     string
	Sort       string
	Mine       bool
	Limit      int
	Offset     int
}

type OpportunityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewOpportunityService(db *sql.DB, m repomanager.RepositoryManager) *OpportunityService {
	return &OpportunityService{db: db, repomanager: m}
}

// Create files a new pending opportunity on behalf of user.
func (s *OpportunityService) Create(ctx context.Context, user *models.User, in OpportunityInput) (*models.Opportunity, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if user.Role == models.RoleJobSeeker {
		return nil, common.ErrorForbidden
	}

	postType, err := models.ParsePostType(in.PostType)
	if err != nil {
		return nil, common.NewValidationError("postType", "must be one of job, auction, tender, announcement")
	}
	if err := s.validate(ctx, in, postType); err != nil {
		return nil, err
	}

	o := &models.Opportunity{PostedBy: user.ID, PostType: postType}
	if err := s.assignPoster(ctx, user, in, o); err != nil {
		return nil, err
	}
	applyInput(o, in)

	return s.repomanager.Opportunities(s.db).Create(ctx, o)
}

func (s *OpportunityService) assignPoster(ctx context.Context, user *models.User, in OpportunityInput, o *models.Opportunity) error {
	companies := s.repomanager.Companies(s.db)

	if user.Role == models.RoleEmployer {
		company, err := companies.GetByOwner(ctx, user.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrCompanyRequired
			}
			return err
		}
		o.CompanyID, o.CompanyName = &company.ID, nil
		return nil
	}

	switch {
	case in.CompanyID != nil && *in.CompanyID != "":
		if _, err := companies.GetByID(ctx, *in.CompanyID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewValidationError("companyId", "unknown company")
			}
			return err
		}
		o.CompanyID, o.CompanyName = in.CompanyID, nil
	case in.CompanyName != nil && !blank(*in.CompanyName):
		name := strings.TrimSpace(*in.CompanyName)
		o.CompanyID, o.CompanyName = nil, &name
	default:
		return common.NewValidationError("companyName", "is required when posting without a company")
	}
	return nil
}

func (s *OpportunityService) validate(ctx context.Context, in OpportunityInput, postType models.PostType) error {
	ve := &common.ValidationError{}
	if blank(in.Title) {
		ve.Add("title", "is required")
	}
	if blank(in.Description) {
		ve.Add("description", "is required")
	}
	if blank(in.Location) {
		ve.Add("location", "is required")
	}

	reject := func(field string) {
		ve.Add(field, "is not accepted for a "+string(postType))
	}
	if postType != models.PostTypeJob && in.EmploymentType != nil {
		reject("type")
	}
	if postType != models.PostTypeJob && postType != models.PostTypeAnnouncement && in.ApplicationDeadline != nil {
		reject("applicationDeadline")
	}
	if postType != models.PostTypeAuction {
		if in.AuctionDate != nil {
			reject("auctionDate")
		}
		if len(in.ViewingDates) > 0 {
			reject("viewingDates")
		}
		if len(in.AuctionItems) > 0 {
			reject("auctionItems")
		}
	}
	if postType != models.PostTypeTender {
		if in.TenderDeadline != nil {
			reject("tenderDeadline")
		}
		if len(in.TenderRequirements) > 0 {
			reject("tenderRequirements")
		}
		if len(in.TenderDocuments) > 0 {
			reject("tenderDocuments")
		}
	}
	if err := ve.OrNil(); err != nil {
		return err
	}

	if in.CategoryID != nil && *in.CategoryID != "" {
		if _, err := s.repomanager.Categories(s.db).GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewValidationError("categoryId", "unknown category")
			}
			return err
		}
	}
	return nil
}

func applyInput(o *models.Opportunity, in OpportunityInput) {
	o.Title = strings.TrimSpace(in.Title)
	o.Description = strings.TrimSpace(in.Description)
	o.Requirements = in.Requirements
	o.Responsibilities = in.Responsibilities
	o.Location = strings.TrimSpace(in.Location)
	o.EmploymentType = in.EmploymentType
	o.CategoryID = in.CategoryID
	if o.CategoryID != nil && *o.CategoryID == "" {
		o.CategoryID = nil
	}
	o.ApplicationDeadline = in.ApplicationDeadline
	o.AuctionDate = in.AuctionDate
	o.ViewingDates = in.ViewingDates
	o.AuctionItems = in.AuctionItems
	o.TenderDeadline = in.TenderDeadline
	o.TenderRequirements = in.TenderRequirements
	o.TenderDocuments = in.TenderDocuments
	o.AdditionalData = in.AdditionalData
}

// Get returns the opportunity if viewer may see it. Hidden opportunities
// look exactly like missing ones.
func (s *OpportunityService) Get(ctx context.Context, viewer *models.User, id string) (*models.Opportunity, error) {
	o, err := s.repomanager.Opportunities(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.VisibleTo(viewer) {
		return nil, common.ErrorNotFound
	}
	return o, nil
}

// manageable loads id and checks user may change it.
func (s *OpportunityService) manageable(ctx context.Context, user *models.User, id string) (*models.Opportunity, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	o, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !o.ManageableBy(user) {
		return nil, common.ErrorForbidden
	}
	return o, nil
}

// Update replaces the editable fields. A rejected opportunity edited by its
// owner goes back to pending review.
func (s *OpportunityService) Update(ctx context.Context, user *models.User, id string, in OpportunityInput) (*models.Opportunity, error) {
	o, err := s.manageable(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if in.PostType != "" && in.PostType != string(o.PostType) {
		return nil, common.NewValidationError("postType", "cannot be changed")
	}
	if err := s.validate(ctx, in, o.PostType); err != nil {
		return nil, err
	}

	applyInput(o, in)
	if o.Status == models.StatusRejected && !user.IsAdmin() {
		o.Status = models.StatusPending
	}

	if err := s.repomanager.Opportunities(s.db).Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OpportunityService) SetActive(ctx context.Context, user *models.User, id string, active bool) (*models.Opportunity, error) {
	o, err := s.manageable(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Opportunities(s.db).SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	o.IsActive = active
	return o, nil
}

// Delete removes the opportunity and its claims for good.
func (s *OpportunityService) Delete(ctx context.Context, user *models.User, id string) error {
	if _, err := s.manageable(ctx, user, id); err != nil {
		return err
	}
	return s.repomanager.Opportunities(s.db).Delete(ctx, id)
}

// List applies q with the visibility rules of viewer: admins see
// everything, Mine shows the caller's own posts in any state, and everyone
// else only sees approved active posts.
func (s *OpportunityService) List(ctx context.Context, viewer *models.User, q ListQuery) ([]*models.Opportunity, error) {
	f, err := parseListQuery(q)
	if err != nil {
		return nil, err
	}

	switch {
	case q.Mine:
		if err := requireUser(viewer); err != nil {
			return nil, err
		}
		f.PostedBy = &viewer.ID
	case viewer.IsAdmin():
	default:
		if f.Status != nil && *f.Status != models.StatusApproved {
			return []*models.Opportunity{}, nil
		}
		approved := models.StatusApproved
		f.Status = &approved
		f.ActiveOnly = true
	}

	list, err := s.repomanager.Opportunities(s.db).List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Opportunity{}
	}
	return list, nil
}

func parseListQuery(q ListQuery) (opportunities.Filter, error) {
	ve := &common.ValidationError{}
	f := opportunities.Filter{Location: q.Location, Keyword: q.Keyword}

	if q.PostType != "" {
		pt, err := models.ParsePostType(q.PostType)
		if err != nil {
			ve.Add("postType", "must be one of job, auction, tender, announcement")
		}
		f.PostType = &pt
	}
	if q.Status != "" {
		st, err := models.ParseModerationStatus(q.Status)
		if err != nil {
			ve.Add("status", "must be one of pending, approved, rejected")
		}
		f.Status = &st
	}
	if q.CategoryID != "" {
		f.CategoryID = &q.CategoryID
	}
	switch opportunities.Sort(q.Sort) {
	case "", opportunities.SortNewest:
		f.Sort = opportunities.SortNewest
	case opportunities.SortDeadline:
		f.Sort = opportunities.SortDeadline
	default:
		ve.Add("sort", "must be newest or deadline")
	}
	if err := ve.OrNil(); err != nil {
		return f, err
	}

	f.Limit, f.Offset = clampPage(q.Limit, q.Offset)
	return f, nil
}

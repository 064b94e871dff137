package httpapi

import (
	"context"

	"github.com/businessinrwanda/marketplace/internal/logging"
	"github.com/businessinrwanda/marketplace/internal/server/claims"
	"github.com/businessinrwanda/marketplace/internal/server/config"
	"github.com/businessinrwanda/marketplace/internal/server/models"
	"github.com/businessinrwanda/marketplace/internal/server/services"
)

// The interfaces below are the slices of the services package the handlers
// call. *services.XService values satisfy them.

type Sessions interface {
	SyncIdentity(ctx context.Context, in services.SyncInput) (*services.SessionResult, error)
	Register(ctx context.Context, in services.RegisterInput) (*services.SessionResult, error)
	Login(ctx context.Context, email, password string) (*services.SessionResult, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, sessionID string) (*models.User, error)
}

type Opportunities interface {
	Create(ctx context.Context, user *models.User, in services.OpportunityInput) (*models.Opportunity, error)
	Get(ctx context.Context, viewer *models.User, id string) (*models.Opportunity, error)
	Update(ctx context.Context, user *models.User, id string, in services.OpportunityInput) (*models.Opportunity, error)
	SetActive(ctx context.Context, user *models.User, id string, active bool) (*models.Opportunity, error)
	Delete(ctx context.Context, user *models.User, id string) error
	List(ctx context.Context, viewer *models.User, q services.ListQuery) ([]*models.Opportunity, error)
}

type Claims interface {
	SubmitClaim(ctx context.Context, user *models.User, opportunityID string, payload claims.Payload) (any, error)
	ListMine(ctx context.Context, user *models.User) (*models.MyClaims, error)
	ListForOpportunity(ctx context.Context, user *models.User, opportunityID string) (*services.OpportunityClaims, error)
	UpdateApplicationStatus(ctx context.Context, user *models.User, applicationID, status string) (*models.Application, error)
	UpdateProposalStatus(ctx context.Context, user *models.User, proposalID, status string) (*models.Proposal, error)
	AwardAuction(ctx context.Context, user *models.User, opportunityID, bidID string) ([]*models.Bid, error)
}

type Moderation interface {
	Approve(ctx context.Context, admin *models.User, id string, notes *string) (*models.Opportunity, error)
	Reject(ctx context.Context, admin *models.User, id string, notes string) (*models.Opportunity, error)
	SetFeatured(ctx context.Context, admin *models.User, id string, featured bool) (*models.Opportunity, error)
	SetActive(ctx context.Context, admin *models.User, id string, active bool) (*models.Opportunity, error)
	Delete(ctx context.Context, admin *models.User, id string) error
	Queue(ctx context.Context, admin *models.User, q services.ListQuery) ([]*models.Opportunity, error)
	Stats(ctx context.Context, admin *models.User) (*services.Stats, error)
	CreateCategory(ctx context.Context, admin *models.User, name, icon string) (*models.Category, error)
	UpdateCategory(ctx context.Context, admin *models.User, id, name, icon string) (*models.Category, error)
	DeleteCategory(ctx context.Context, admin *models.User, id string) error
	ListUsers(ctx context.Context, admin *models.User, role string, limit, offset int) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, admin *models.User, userID, role string) (*models.User, error)
	DeleteUser(ctx context.Context, admin *models.User, userID string) error
}

type Companies interface {
	Create(ctx context.Context, user *models.User, in services.CompanyInput) (*models.Company, error)
	GetMine(ctx context.Context, user *models.User) (*models.Company, error)
	UpdateMine(ctx context.Context, user *models.User, in services.CompanyInput) (*models.Company, error)
	Get(ctx context.Context, id string) (*models.Company, error)
	List(ctx context.Context, limit, offset int) ([]*models.Company, error)
}

type Categories interface {
	List(ctx context.Context) ([]*models.Category, error)
}

type Uploads interface {
	Presign(ctx context.Context, user *models.User, kind, filename, contentType string) (*services.PresignedUpload, error)
}

// Deps wires the router. Ping backs /healthz and may be nil.
type Deps struct {
	Config *config.Config
	Logger logging.Logger

	Sessions      Sessions
	Opportunities Opportunities
	Claims        Claims
	Moderation    Moderation
	Companies     Companies
	Categories    Categories
	Uploads       Uploads

	Ping func(ctx context.Context) error
}

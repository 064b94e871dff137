package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/logging"
	"github.com/businessinrwanda/marketplace/internal/server/cache"
	"github.com/businessinrwanda/marketplace/internal/server/claims"
	"github.com/businessinrwanda/marketplace/internal/server/config"
	"github.com/businessinrwanda/marketplace/internal/server/models"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/repomanager"
)

// OpportunityClaims lists every claim on one opportunity. Items holds the
// slice of the variant named by Kind.
type OpportunityClaims struct {
	Kind  claims.Kind `json:"kind"`
	Items any         `json:"items"`
}

type ClaimService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	cache            cache.ClaimCache
	rejectDuplicates bool
	log              logging.Logger
}

func NewClaimService(db *sql.DB, m repomanager.RepositoryManager, c cache.ClaimCache, cfg *config.Config, log logging.Logger) *ClaimService {
	return &ClaimService{
		db:               db,
		repomanager:      m,
		cache:            c,
		rejectDuplicates: cfg.ClaimDuplicates == config.ClaimDuplicatesReject,
		log:              log.With("module", "claims"),
	}
}

// SubmitClaim records user's claim on an opportunity and returns the stored
// record: *models.Application, *models.Bid, *models.Proposal or
// *models.Interest depending on the payload kind.
func (s *ClaimService) SubmitClaim(ctx context.Context, user *models.User, opportunityID string, payload claims.Payload) (any, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	o, err := s.repomanager.Opportunities(s.db).GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !o.Visible() {
		return nil, common.ErrorNotFound
	}

	want, ok := claims.KindFor(o.PostType)
	if !ok {
		return nil, fmt.Errorf("%w: post type %q has no claim kind", common.ErrorInternal, o.PostType)
	}
	if payload == nil {
		return nil, common.NewValidationError("body", "is required")
	}
	if payload.Kind() != want {
		return nil, common.NewValidationError("postType",
			fmt.Sprintf("a %s accepts a %s, not a %s", o.PostType, want, payload.Kind()))
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if o.PostedBy == user.ID {
		return nil, fmt.Errorf("%w: cannot respond to your own post", common.ErrorForbidden)
	}
	if err := s.checkDuplicate(ctx, want, user.ID, o.ID); err != nil {
		return nil, err
	}

	record, affected, err := s.persist(ctx, user, o, payload)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, append(affected, user.ID)...)
	s.log.Info(ctx, "claim submitted", "kind", want, "opportunity_id", o.ID, "user_id", user.ID)
	return record, nil
}

func (s *ClaimService) checkDuplicate(ctx context.Context, kind claims.Kind, userID, opportunityID string) error {
	if !s.rejectDuplicates {
		return nil
	}

	var (
		exists bool
		err    error
	)
	switch kind {
	case claims.KindApplication:
		exists, err = s.repomanager.Applications(s.db).Exists(ctx, userID, opportunityID)
	case claims.KindProposal:
		exists, err = s.repomanager.Proposals(s.db).Exists(ctx, userID, opportunityID)
	case claims.KindInterest:
		exists, err = s.repomanager.Interests(s.db).Exists(ctx, userID, opportunityID)
	default:
		// bidders raise by bidding again
		return nil
	}
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: you already responded to this post", common.ErrorConflict)
	}
	return nil
}

// persist stores the payload. The returned user ids are other users whose
// cached claim lists changed as a side effect.
func (s *ClaimService) persist(ctx context.Context, user *models.User, o *models.Opportunity, payload claims.Payload) (any, []string, error) {
	switch p := payload.(type) {
	case *claims.ApplicationPayload:
		a, err := s.repomanager.Applications(s.db).Create(ctx, &models.Application{
			OpportunityID: o.ID,
			UserID:        user.ID,
			CoverLetter:   p.CoverLetter,
			ResumeURL:     p.ResumeURL,
			DocumentsURL:  p.DocumentsURL,
		})
		return a, nil, err

	case *claims.BidPayload:
		return s.placeBid(ctx, user, o, p)

	case *claims.ProposalPayload:
		currency := p.Currency
		if currency == "" && p.ProposedAmount != nil {
			currency = claims.DefaultCurrency
		}
		pr, err := s.repomanager.Proposals(s.db).Create(ctx, &models.Proposal{
			OpportunityID:       o.ID,
			UserID:              user.ID,
			ProposalTitle:       p.ProposalTitle,
			ProposalDescription: p.ProposalDescription,
			ProposedAmount:      p.ProposedAmount,
			Currency:            currency,
			DocumentsURL:        p.DocumentsURL,
			CoverLetter:         p.CoverLetter,
		})
		return pr, nil, err

	case *claims.InterestPayload:
		pref := p.ContactPreference
		if pref == "" {
			pref = claims.ContactEmail
		}
		i, err := s.repomanager.Interests(s.db).Create(ctx, &models.Interest{
			OpportunityID:     o.ID,
			UserID:            user.ID,
			Message:           p.Message,
			ContactPreference: pref,
			NotifyUpdates:     p.NotifyUpdates,
		})
		return i, nil, err
	}
	return nil, nil, fmt.Errorf("%w: unsupported payload %T", common.ErrorInternal, payload)
}

// placeBid ranks the new bid against the current highest one under a row
// lock on the auction. Only a strictly higher bid takes the lead.
func (s *ClaimService) placeBid(ctx context.Context, user *models.User, o *models.Opportunity, p *claims.BidPayload) (*models.Bid, []string, error) {
	currency := p.Currency
	if currency == "" {
		currency = claims.DefaultCurrency
	}
	bid := &models.Bid{
		OpportunityID: o.ID,
		UserID:        user.ID,
		BidAmount:     p.BidAmount,
		Currency:      currency,
		Message:       p.Message,
		DocumentsURL:  p.DocumentsURL,
		Status:        models.BidOutbid,
	}

	var outbid []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		bids := s.repomanager.Bids(tx)
		if err := bids.LockAuction(ctx, o.ID); err != nil {
			return err
		}
		highest, err := bids.HighestAmount(ctx, o.ID)
		if err != nil {
			return err
		}
		if bid.BidAmount > highest {
			if outbid, err = bids.Outbid(ctx, o.ID); err != nil {
				return err
			}
			bid.Status = models.BidWinning
		}
		_, err = bids.Create(ctx, bid)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return bid, outbid, nil
}

// ListMine returns every claim user has made, served from the cache when
// possible.
func (s *ClaimService) ListMine(ctx context.Context, user *models.User) (*models.MyClaims, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	if cached, ok, err := s.cache.Get(ctx, user.ID); err != nil {
		s.log.Warn(ctx, "claim cache read failed", "user_id", user.ID, "error", err)
	} else if ok {
		return cached, nil
	}

	mine := &models.MyClaims{}
	var err error
	if mine.Applications, err = s.repomanager.Applications(s.db).ListByUser(ctx, user.ID); err != nil {
		return nil, err
	}
	if mine.Bids, err = s.repomanager.Bids(s.db).ListByUser(ctx, user.ID); err != nil {
		return nil, err
	}
	if mine.Proposals, err = s.repomanager.Proposals(s.db).ListByUser(ctx, user.ID); err != nil {
		return nil, err
	}
	if mine.Interests, err = s.repomanager.Interests(s.db).ListByUser(ctx, user.ID); err != nil {
		return nil, err
	}
	fillEmpty(mine)

	if err := s.cache.Set(ctx, user.ID, mine); err != nil {
		s.log.Warn(ctx, "claim cache write failed", "user_id", user.ID, "error", err)
	}
	return mine, nil
}

func fillEmpty(m *models.MyClaims) {
	if m.Applications == nil {
		m.Applications = []*models.Application{}
	}
	if m.Bids == nil {
		m.Bids = []*models.Bid{}
	}
	if m.Proposals == nil {
		m.Proposals = []*models.Proposal{}
	}
	if m.Interests == nil {
		m.Interests = []*models.Interest{}
	}
}

// ownedOpportunity loads an opportunity user may manage.
func (s *ClaimService) ownedOpportunity(ctx context.Context, user *models.User, opportunityID string) (*models.Opportunity, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	o, err := s.repomanager.Opportunities(s.db).GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !o.ManageableBy(user) {
		if o.VisibleTo(user) {
			return nil, common.ErrorForbidden
		}
		return nil, common.ErrorNotFound
	}
	return o, nil
}

// ListForOpportunity shows the poster (or an admin) who responded.
func (s *ClaimService) ListForOpportunity(ctx context.Context, user *models.User, opportunityID string) (*OpportunityClaims, error) {
	o, err := s.ownedOpportunity(ctx, user, opportunityID)
	if err != nil {
		return nil, err
	}
	kind, _ := claims.KindFor(o.PostType)

	var items any
	switch kind {
	case claims.KindApplication:
		list, err := s.repomanager.Applications(s.db).ListByOpportunity(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []*models.Application{}
		}
		items = list
	case claims.KindBid:
		list, err := s.repomanager.Bids(s.db).ListByOpportunity(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []*models.Bid{}
		}
		items = list
	case claims.KindProposal:
		list, err := s.repomanager.Proposals(s.db).ListByOpportunity(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []*models.Proposal{}
		}
		items = list
	case claims.KindInterest:
		list, err := s.repomanager.Interests(s.db).ListByOpportunity(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []*models.Interest{}
		}
		items = list
	}
	return &OpportunityClaims{Kind: kind, Items: items}, nil
}

func parseNextStatus(from models.ApplicationStatus, raw string) (models.ApplicationStatus, error) {
	to, err := models.ParseApplicationStatus(raw)
	if err != nil {
		return "", common.NewValidationError("status", "unknown status")
	}
	if !claims.IsTransitionAllowed(from, to) {
		return "", common.NewValidationError("status", fmt.Sprintf("cannot move from %s to %s", from, to))
	}
	return to, nil
}

// UpdateApplicationStatus moves an application along the hiring pipeline.
func (s *ClaimService) UpdateApplicationStatus(ctx context.Context, user *models.User, applicationID, status string) (*models.Application, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	repo := s.repomanager.Applications(s.db)
	a, err := repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedOpportunity(ctx, user, a.OpportunityID); err != nil {
		return nil, err
	}
	to, err := parseNextStatus(a.Status, status)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateStatus(ctx, a.ID, to); err != nil {
		return nil, err
	}
	a.Status = to
	s.invalidate(ctx, a.UserID)
	return a, nil
}

// UpdateProposalStatus moves a tender proposal along the same pipeline as
// applications.
func (s *ClaimService) UpdateProposalStatus(ctx context.Context, user *models.User, proposalID, status string) (*models.Proposal, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	repo := s.repomanager.Proposals(s.db)
	p, err := repo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedOpportunity(ctx, user, p.OpportunityID); err != nil {
		return nil, err
	}
	to, err := parseNextStatus(p.Status, status)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateStatus(ctx, p.ID, to); err != nil {
		return nil, err
	}
	p.Status = to
	s.invalidate(ctx, p.UserID)
	return p, nil
}

// AwardAuction closes an auction: bidID wins, every other bid loses.
func (s *ClaimService) AwardAuction(ctx context.Context, user *models.User, opportunityID, bidID string) ([]*models.Bid, error) {
	o, err := s.ownedOpportunity(ctx, user, opportunityID)
	if err != nil {
		return nil, err
	}
	if o.PostType != models.PostTypeAuction {
		return nil, common.NewValidationError("postType", "only auctions can be awarded")
	}

	bid, err := s.repomanager.Bids(s.db).GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewValidationError("bidId", "unknown bid")
		}
		return nil, err
	}
	if bid.OpportunityID != o.ID {
		return nil, common.NewValidationError("bidId", "bid belongs to another auction")
	}

	var bidders []string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		bids := s.repomanager.Bids(tx)
		if err := bids.LockAuction(ctx, o.ID); err != nil {
			return err
		}
		var err error
		bidders, err = bids.Award(ctx, o.ID, bid.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, bidders...)
	s.log.Info(ctx, "auction awarded", "opportunity_id", o.ID, "bid_id", bid.ID)

	list, err := s.repomanager.Bids(s.db).ListByOpportunity(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ClaimService) invalidate(ctx context.Context, userIDs ...string) {
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		s.log.Warn(ctx, "claim cache invalidation failed", "error", err)
	}
}

// Package httpapi is the JSON/HTTP surface of the marketplace. Handlers
// decode requests, take the caller from the session cookie and hand both to
// the services package.
package httpapi

import (
	"net/http"

	"github.com/businessinrwanda/marketplace/internal/logging"
	"github.com/businessinrwanda/marketplace/internal/server/claims"
	"github.com/businessinrwanda/marketplace/internal/server/config"
)

type Server struct {
	deps    Deps
	config  *config.Config
	log     logging.Logger
	limiter *clientLimiter
}

func NewServer(d Deps) *Server {
	return &Server{
		deps:    d,
		config:  d.Config,
		log:     d.Logger.With("module", "httpapi"),
		limiter: newClientLimiter(d.Config.AuthRateLimit, d.Config.AuthRateBurst),
	}
}

// Handler returns the routed API wrapped in the standard middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthz)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.limit(s.register))
	mux.HandleFunc("POST /api/auth/login", s.limit(s.login))
	mux.HandleFunc("POST /api/auth/firebase-sync", s.limit(s.syncIdentity))
	mux.HandleFunc("POST /api/auth/logout", s.logout)
	mux.HandleFunc("GET /api/auth/me", s.me)

	// Opportunities
	mux.HandleFunc("GET /api/jobs", s.listOpportunities)
	mux.HandleFunc("POST /api/jobs", s.createOpportunity)
	mux.HandleFunc("GET /api/jobs/{id}", s.getOpportunity)
	mux.HandleFunc("PUT /api/jobs/{id}", s.updateOpportunity)
	mux.HandleFunc("DELETE /api/jobs/{id}", s.deleteOpportunity)
	mux.HandleFunc("PATCH /api/jobs/{id}/active", s.setOpportunityActive)

	// Claims
	mux.HandleFunc("POST /api/jobs/{id}/apply", s.submitClaim(claims.KindApplication))
	mux.HandleFunc("POST /api/jobs/{id}/bid", s.submitClaim(claims.KindBid))
	mux.HandleFunc("POST /api/jobs/{id}/proposal", s.submitClaim(claims.KindProposal))
	mux.HandleFunc("POST /api/jobs/{id}/interest", s.submitClaim(claims.KindInterest))
	mux.HandleFunc("GET /api/jobs/{id}/claims", s.listOpportunityClaims)
	mux.HandleFunc("POST /api/jobs/{id}/award", s.awardAuction)
	mux.HandleFunc("PATCH /api/applications/{id}/status", s.updateApplicationStatus)
	mux.HandleFunc("PATCH /api/proposals/{id}/status", s.updateProposalStatus)
	mux.HandleFunc("GET /api/me/claims", s.myClaims)

	// Companies, categories, uploads
	mux.HandleFunc("GET /api/companies", s.listCompanies)
	mux.HandleFunc("POST /api/companies", s.createCompany)
	mux.HandleFunc("GET /api/companies/me", s.myCompany)
	mux.HandleFunc("PUT /api/companies/me", s.updateMyCompany)
	mux.HandleFunc("GET /api/companies/{id}", s.getCompany)
	mux.HandleFunc("GET /api/categories", s.listCategories)
	mux.HandleFunc("POST /api/uploads/presign", s.presignUpload)

	// Admin
	mux.HandleFunc("GET /api/admin/jobs", s.adminQueue)
	mux.HandleFunc("PATCH /api/admin/jobs/{id}/approve", s.adminApprove)
	mux.HandleFunc("PATCH /api/admin/jobs/{id}/reject", s.adminReject)
	mux.HandleFunc("PATCH /api/admin/jobs/{id}/feature", s.adminFeature)
	mux.HandleFunc("PATCH /api/admin/jobs/{id}/active", s.adminActive)
	mux.HandleFunc("DELETE /api/admin/jobs/{id}", s.adminDelete)
	mux.HandleFunc("POST /api/admin/categories", s.adminCreateCategory)
	mux.HandleFunc("PUT /api/admin/categories/{id}", s.adminUpdateCategory)
	mux.HandleFunc("DELETE /api/admin/categories/{id}", s.adminDeleteCategory)
	mux.HandleFunc("GET /api/admin/users", s.adminListUsers)
	mux.HandleFunc("PATCH /api/admin/users/{id}/role", s.adminUpdateRole)
	mux.HandleFunc("DELETE /api/admin/users/{id}", s.adminDeleteUser)
	mux.HandleFunc("GET /api/admin/stats", s.adminStats)

	return Chain(mux, RequestID, Recover(s.log), AccessLog(s.log), s.authenticate)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(r.Context()); err != nil {
			s.log.Warn(r.Context(), "health check failed", "error", err)
			writeMessage(w, r, http.StatusServiceUnavailable, "database unavailable", nil)
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

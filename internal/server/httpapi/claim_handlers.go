package httpapi

import (
	"net/http"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/claims"
)

// submitClaim serves the four claim routes; kind selects the payload shape.
func (s *Server) submitClaim(kind claims.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil {
			s.writeError(w, r, common.ErrorUnauthorized)
			return
		}
		body, err := readBody(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		payload, err := claims.Decode(kind, body)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rec, err := s.deps.Claims.SubmitClaim(r.Context(), user, r.PathValue("id"), payload)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeData(w, http.StatusCreated, rec)
	}
}

func (s *Server) listOpportunityClaims(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Claims.ListForOpportunity(r.Context(), UserFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) awardAuction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BidID string `json:"bidId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.BidID == "" {
		s.writeError(w, r, common.NewValidationError("bidId", "is required"))
		return
	}
	bids, err := s.deps.Claims.AwardAuction(r.Context(), UserFrom(r.Context()), r.PathValue("id"), req.BidID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, bids)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.deps.Claims.UpdateApplicationStatus(r.Context(), UserFrom(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) updateProposalStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.deps.Claims.UpdateProposalStatus(r.Context(), UserFrom(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) myClaims(w http.ResponseWriter, r *http.Request) {
	mine, err := s.deps.Claims.ListMine(r.Context(), UserFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, mine)
}

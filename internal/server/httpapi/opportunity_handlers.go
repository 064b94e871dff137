package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/services"
)

type opportunityRequest struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Requirements     string  `json:"requirements"`
	Responsibilities *string `json:"responsibilities"`
	Location         string  `json:"location"`
	Type             *string `json:"type"`
	PostType         string  `json:"postType"`
	CategoryID       *string `json:"categoryId"`
	CompanyID        *string `json:"companyId"`
	CompanyName      *string `json:"companyName"`

	ApplicationDeadline *time.Time     `json:"applicationDeadline"`
	AuctionDate         *time.Time     `json:"auctionDate"`
	ViewingDates        []string       `json:"viewingDates"`
	AuctionItems        []string       `json:"auctionItems"`
	TenderDeadline      *time.Time     `json:"tenderDeadline"`
	TenderRequirements  []string       `json:"tenderRequirements"`
	TenderDocuments     []string       `json:"tenderDocuments"`
	AdditionalData      map[string]any `json:"additionalData"`
}

func (req opportunityRequest) input() services.OpportunityInput {
	return services.OpportunityInput{
		Title:               req.Title,
		Description:         req.Description,
		Requirements:        req.Requirements,
		Responsibilities:    req.Responsibilities,
		Location:            req.Location,
		EmploymentType:      req.Type,
		PostType:            req.PostType,
		CategoryID:          req.CategoryID,
		CompanyID:           req.CompanyID,
		CompanyName:         req.CompanyName,
		ApplicationDeadline: req.ApplicationDeadline,
		AuctionDate:         req.AuctionDate,
		ViewingDates:        req.ViewingDates,
		AuctionItems:        req.AuctionItems,
		TenderDeadline:      req.TenderDeadline,
		TenderRequirements:  req.TenderRequirements,
		TenderDocuments:     req.TenderDocuments,
		AdditionalData:      req.AdditionalData,
	}
}

// listQuery reads the listing filters shared by the public and admin lists.
func listQuery(r *http.Request) (services.ListQuery, error) {
	q := r.URL.Query()
	lq := services.ListQuery{
		PostType:   q.Get("postType"),
		CategoryID: q.Get("category"),
		Location:   q.Get("location"),
		Keyword:    q.Get("q"),
		Status:     q.Get("status"),
		Sort:       q.Get("sort"),
	}

	ve := &common.ValidationError{}
	if v := q.Get("mine"); v != "" {
		mine, err := strconv.ParseBool(v)
		if err != nil {
			ve.Add("mine", "must be true or false")
		}
		lq.Mine = mine
	}
	lq.Limit, lq.Offset = pageParams(r, ve)
	return lq, ve.OrNil()
}

func pageParams(r *http.Request, ve *common.ValidationError) (limit, offset int) {
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &limit}, {"offset", &offset}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			ve.Add(p.name, "must be a non-negative integer")
			continue
		}
		*p.dst = n
	}
	return limit, offset
}

func (s *Server) listOpportunities(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.deps.Opportunities.List(r.Context(), UserFrom(r.Context()), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) createOpportunity(w http.ResponseWriter, r *http.Request) {
	var req opportunityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.deps.Opportunities.Create(r.Context(), UserFrom(r.Context()), req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, o)
}

func (s *Server) getOpportunity(w http.ResponseWriter, r *http.Request) {
	o, err := s.deps.Opportunities.Get(r.Context(), UserFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) updateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req opportunityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.deps.Opportunities.Update(r.Context(), UserFrom(r.Context()), r.PathValue("id"), req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) deleteOpportunity(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Opportunities.Delete(r.Context(), UserFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

type activeRequest struct {
	IsActive *bool `json:"isActive"`
}

func decodeActive(w http.ResponseWriter, r *http.Request) (bool, error) {
	var req activeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return false, err
	}
	if req.IsActive == nil {
		return false, common.NewValidationError("isActive", "is required")
	}
	return *req.IsActive, nil
}

func (s *Server) setOpportunityActive(w http.ResponseWriter, r *http.Request) {
	active, err := decodeActive(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.deps.Opportunities.SetActive(r.Context(), UserFrom(r.Context()), r.PathValue("id"), active)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

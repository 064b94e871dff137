package httpapi

import (
	"net/http"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/services"
)

type companyRequest struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	LogoURL     string `json:"logoUrl"`
	Description string `json:"description"`
	Size        string `json:"size"`
	FoundedYear *int   `json:"foundedYear"`
	Website     string `json:"website"`
}

func (req companyRequest) input() services.CompanyInput {
	return services.CompanyInput(req)
}

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	ve := &common.ValidationError{}
	limit, offset := pageParams(r, ve)
	if err := ve.OrNil(); err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.deps.Companies.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.deps.Companies.Create(r.Context(), UserFrom(r.Context()), req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (s *Server) myCompany(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Companies.GetMine(r.Context(), UserFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) updateMyCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.deps.Companies.UpdateMine(r.Context(), UserFrom(r.Context()), req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Companies.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Categories.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) presignUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind        string `json:"kind"`
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	up, err := s.deps.Uploads.Presign(r.Context(), UserFrom(r.Context()), req.Kind, req.Filename, req.ContentType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, up)
}

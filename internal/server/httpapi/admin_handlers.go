package httpapi

import (
	"net/http"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type moderationRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}

// decodeModeration reads an approve/reject body. A body is optional; its
// status, when given, must match the route.
func decodeModeration(w http.ResponseWriter, r *http.Request, want models.ModerationStatus) (moderationRequest, error) {
	var req moderationRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			return req, err
		}
	}
	if req.Status != "" && req.Status != string(want) {
		return req, common.NewValidationError("status", "must be "+string(want)+" on this route")
	}
	return req, nil
}

func (s *Server) adminQueue(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.deps.Moderation.Queue(r.Context(), UserFrom(r.Context()), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) adminApprove(w http.ResponseWriter, r *http.Request) {
	req, err := decodeModeration(w, r, models.StatusApproved)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.deps.Moderation.Approve(r.Context(), UserFrom(r.Context()), r.PathValue("id"), req.AdminNotes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) adminReject(w http.ResponseWriter, r *http.Request) {
	req, err := decodeModeration(w, r, models.StatusRejected)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var notes string
	if req.AdminNotes != nil {
		notes = *req.AdminNotes
	}
	o, err := s.deps.Moderation.Reject(r.Context(), UserFrom(r.Context()), r.PathValue("id"), notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) adminFeature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsFeatured *bool `json:"isFeatured"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.IsFeatured == nil {
		s.writeError(w, r, common.NewValidationError("isFeatured", "is required"))
		return
	}
	o, err := s.deps.Moderation.SetFeatured(r.Context(), UserFrom(r.Context()), r.PathValue("id"), *req.IsFeatured)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) adminActive(w http.ResponseWriter, r *http.Request) {
	active, err := decodeActive(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.deps.Moderation.SetActive(r.Context(), UserFrom(r.Context()), r.PathValue("id"), active)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (s *Server) adminDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Moderation.Delete(r.Context(), UserFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

type categoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) adminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.deps.Moderation.CreateCategory(r.Context(), UserFrom(r.Context()), req.Name, req.Icon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (s *Server) adminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.deps.Moderation.UpdateCategory(r.Context(), UserFrom(r.Context()), r.PathValue("id"), req.Name, req.Icon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) adminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Moderation.DeleteCategory(r.Context(), UserFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (s *Server) adminListUsers(w http.ResponseWriter, r *http.Request) {
	ve := &common.ValidationError{}
	limit, offset := pageParams(r, ve)
	if err := ve.OrNil(); err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.deps.Moderation.ListUsers(r.Context(), UserFrom(r.Context()), r.URL.Query().Get("role"), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) adminUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.deps.Moderation.UpdateUserRole(r.Context(), UserFrom(r.Context()), r.PathValue("id"), req.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

func (s *Server) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Moderation.DeleteUser(r.Context(), UserFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Moderation.Stats(r.Context(), UserFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, st)
}

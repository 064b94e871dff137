package httpapi

import (
	"net/http"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/models"
	"github.com/businessinrwanda/marketplace/internal/server/services"
)

type sessionResponse struct {
	User       *models.User `json:"user"`
	RedirectTo string       `json:"redirectTo,omitempty"`
}

func (s *Server) setSessionCookie(w http.ResponseWriter, res *services.SessionResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    res.Session.ID,
		Path:     "/",
		Expires:  res.Session.ExpiresAt,
		HttpOnly: true,
		Secure:   s.config.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) startSession(w http.ResponseWriter, status int, res *services.SessionResult) {
	s.setSessionCookie(w, res)
	writeData(w, status, sessionResponse{User: res.User, RedirectTo: res.RedirectTo})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
		Role     string `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Sessions.Register(r.Context(), services.RegisterInput{
		Email: req.Email, Password: req.Password, FullName: req.FullName, Role: req.Role,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, http.StatusCreated, res)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, http.StatusOK, res)
}

// syncIdentity exchanges an identity-provider token for a session. When
// the provider is unavailable the existing cookie is left alone.
func (s *Server) syncIdentity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken     string `json:"idToken"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoURL"`
		Role        string `json:"role"`
		CurrentPath string `json:"currentPath"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Sessions.SyncIdentity(r.Context(), services.SyncInput{
		IDToken:     req.IDToken,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		RoleHint:    req.Role,
		CurrentPath: req.CurrentPath,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, http.StatusOK, res)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Sessions.Logout(r.Context(), sessionIDFrom(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	writeData(w, http.StatusOK, nil)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}
	writeData(w, http.StatusOK, sessionResponse{User: user})
}

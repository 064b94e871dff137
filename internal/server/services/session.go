package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/logging"
	"github.com/businessinrwanda/marketplace/internal/server/auth"
	"github.com/businessinrwanda/marketplace/internal/server/config"
	"github.com/businessinrwanda/marketplace/internal/server/models"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/repomanager"
)

// Dashboard paths per role.
const (
	DashboardJobSeeker = "/dashboard/jobseeker"
	DashboardEmployer  = "/dashboard/employer"
	DashboardAdmin     = "/dashboard/admin"
)

// SyncInput is what the browser posts after signing in with the identity
// provider.
type SyncInput struct {
	IDToken     string
	Email       string
	DisplayName string
	PhotoURL    string
	RoleHint    string
	CurrentPath string
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// SessionResult is a started session. RedirectTo is empty when the caller
// is already where it belongs.
type SessionResult struct {
	User       *models.User
	Session    *models.Session
	RedirectTo string
}

// SessionService exchanges identity tokens or local credentials for
// server-side sessions and resolves session cookies back into users.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    auth.IdentityVerifier
	sessionTTL  time.Duration
	log         logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, verifier auth.IdentityVerifier, cfg *config.Config, log logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		verifier:    verifier,
		sessionTTL:  cfg.SessionTTL,
		log:         log.With("module", "sessions"),
	}
}

// SyncIdentity verifies the identity token and returns the matching user,
// creating it on first sight. The role of an existing user never changes
// here; only its display name and photo are refreshed.
func (s *SessionService) SyncIdentity(ctx context.Context, in SyncInput) (*SessionResult, error) {
	email := normalizeEmail(in.Email)
	ve := &common.ValidationError{}
	if email == "" {
		ve.Add("email", "is required")
	}
	if blank(in.IDToken) {
		ve.Add("idToken", "is required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	claims, err := s.verifier.Verify(ctx, in.IDToken)
	if err != nil {
		if errors.Is(err, common.ErrIdentityUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, fmt.Errorf("%w: token carries no email", common.ErrorUnauthorized)
	}
	if !strings.EqualFold(strings.TrimSpace(claims.Email), email) {
		return nil, fmt.Errorf("%w: token email does not match", common.ErrorUnauthorized)
	}
	email = normalizeEmail(claims.Email)
	externalID := claims.Subject

	var res *SessionResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		user, created, err := s.resolveIdentity(ctx, users, externalID, email, claims.EmailVerified, in)
		if err != nil {
			return err
		}
		if !created {
			if err := s.refreshDisplay(ctx, users, user, in); err != nil {
				return err
			}
		}

		session, err := s.startSession(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		res = &SessionResult{User: user, Session: session, RedirectTo: RedirectTarget(user.Role, in.CurrentPath)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "identity synced", "user_id", res.User.ID, "role", res.User.Role)
	return res, nil
}

type userStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	LinkExternalID(ctx context.Context, userID, externalID string) error
	Create(ctx context.Context, u *models.User) (*models.User, error)
	UpdateDisplay(ctx context.Context, userID, fullName, photoURL string) error
}

// resolveIdentity finds the user by external id, then by email (linking a
// local account), and creates one otherwise. Only a provider-verified email
// may be linked to an existing account.
func (s *SessionService) resolveIdentity(ctx context.Context, users userStore, externalID, email string, emailVerified bool, in SyncInput) (*models.User, bool, error) {
	user, err := users.GetByExternalID(ctx, externalID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, err
	}

	user, err = users.GetByEmail(ctx, email)
	if err == nil {
		if !emailVerified {
			return nil, false, fmt.Errorf("%w: email not verified by the identity provider", common.ErrorUnauthorized)
		}
		if err := users.LinkExternalID(ctx, user.ID, externalID); err != nil {
			return nil, false, err
		}
		user.ExternalID = &externalID
		return user, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, err
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	user, err = users.Create(ctx, &models.User{
		Email:      email,
		ExternalID: &externalID,
		Role:       roleFromHint(in.RoleHint),
		FullName:   name,
		PhotoURL:   in.PhotoURL,
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *SessionService) refreshDisplay(ctx context.Context, users userStore, user *models.User, in SyncInput) error {
	name, photo := user.FullName, user.PhotoURL
	if v := strings.TrimSpace(in.DisplayName); v != "" {
		name = v
	}
	if in.PhotoURL != "" {
		photo = in.PhotoURL
	}
	if name == user.FullName && photo == user.PhotoURL {
		return nil
	}
	if err := users.UpdateDisplay(ctx, user.ID, name, photo); err != nil {
		return err
	}
	user.FullName, user.PhotoURL = name, photo
	return nil
}

// roleFromHint honors only non-admin hints.
func roleFromHint(hint string) models.Role {
	if models.Role(hint) == models.RoleEmployer {
		return models.RoleEmployer
	}
	return models.RoleJobSeeker
}

// Register creates a password account and starts a session.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*SessionResult, error) {
	email := normalizeEmail(in.Email)
	ve := &common.ValidationError{}
	if email == "" || !strings.Contains(email, "@") {
		ve.Add("email", "must be a valid email address")
	}
	if len(in.Password) < auth.MinPasswordLength {
		ve.Add("password", fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength))
	}
	if blank(in.FullName) {
		ve.Add("fullName", "is required")
	}
	role := models.RoleJobSeeker
	if in.Role != "" {
		r, err := models.ParseRole(in.Role)
		if err != nil {
			ve.Add("role", "must be job_seeker or employer")
		}
		role = r
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	if role == models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts cannot self-register", common.ErrorForbidden)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var res *SessionResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:        email,
			PasswordHash: &hash,
			Role:         role,
			FullName:     strings.TrimSpace(in.FullName),
		})
		if err != nil {
			return err
		}
		session, err := s.startSession(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		res = &SessionResult{User: user, Session: session, RedirectTo: RedirectTarget(user.Role, "")}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Login checks local credentials. Unknown users, wrong passwords and
// accounts without a password all fail the same way.
func (s *SessionService) Login(ctx context.Context, email, password string) (*SessionResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	session, err := s.startSession(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}
	return &SessionResult{User: user, Session: session, RedirectTo: RedirectTarget(user.Role, "")}, nil
}

// Logout ends the session. Unknown sessions are ignored.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.repomanager.Sessions(s.db).Delete(ctx, sessionID)
}

// Authenticate resolves a session cookie value into its user.
func (s *SessionService) Authenticate(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, common.ErrorUnauthorized
	}

	sessions := s.repomanager.Sessions(s.db)
	session, err := sessions.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if session.Expired(now()) {
		if err := sessions.Delete(ctx, sessionID); err != nil {
			s.log.Warn(ctx, "delete expired session", "error", err)
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrSessionExpired)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// PurgeExpired removes sessions past their expiry.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info(ctx, "expired sessions purged", "count", n)
	}
	return n, nil
}

func (s *SessionService) startSession(ctx context.Context, db dbx.DBTX, userID string) (*models.Session, error) {
	id, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return s.repomanager.Sessions(db).Create(ctx, userID, id, s.sessionTTL)
}

// DashboardPath returns the landing dashboard for role.
func DashboardPath(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return DashboardAdmin
	case models.RoleEmployer:
		return DashboardEmployer
	default:
		return DashboardJobSeeker
	}
}

// RedirectTarget tells a freshly signed-in user where to go. Users already
// inside their own dashboard stay put; everyone else, including visitors
// on public pages and users on another role's dashboard, is sent to their
// dashboard.
func RedirectTarget(role models.Role, currentPath string) string {
	dash := DashboardPath(role)
	if currentPath == dash || strings.HasPrefix(currentPath, dash+"/") {
		return ""
	}
	return dash
}

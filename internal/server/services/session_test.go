package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/logging"
	"github.com/businessinrwanda/marketplace/internal/server/auth"
	"github.com/businessinrwanda/marketplace/internal/server/config"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type fakeVerifier struct {
	claims *auth.IdentityClaims
	err    error
}

func (f *fakeVerifier) Verify(context.Context, string) (*auth.IdentityClaims, error) {
	return f.claims, f.err
}

func identity(subject, email string) *fakeVerifier {
	c := &auth.IdentityClaims{Email: email, EmailVerified: email != ""}
	c.Subject = subject
	return &fakeVerifier{claims: c}
}

func unverifiedIdentity(subject, email string) *fakeVerifier {
	v := identity(subject, email)
	v.claims.EmailVerified = false
	return v
}

func newSessionService(t *testing.T, store *memStore, v auth.IdentityVerifier) (*SessionService, func()) {
	t.Helper()
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	cfg := &config.Config{SessionTTL: time.Hour}
	svc := NewSessionService(db, &fakeRepoManager{store}, v, cfg, logging.Nop{})
	expectTx := func() {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	return svc, expectTx
}

func TestSessionService_SyncIdentity_CreatesUser(t *testing.T) {
	store := newMemStore()
	svc, expectTx := newSessionService(t, store, identity("ext-1", "amani@example.rw"))
	expectTx()

	res, err := svc.SyncIdentity(context.Background(), SyncInput{
		IDToken:     "tok",
		Email:       " Amani@Example.rw ",
		DisplayName: "Amani",
		RoleHint:    "admin",
		CurrentPath: "/",
	})
	require.NoError(t, err)

	assert.Equal(t, "amani@example.rw", res.User.Email)
	assert.Equal(t, models.RoleJobSeeker, res.User.Role, "admin hints are ignored")
	require.NotNil(t, res.User.ExternalID)
	assert.Equal(t, "ext-1", *res.User.ExternalID)
	assert.Equal(t, DashboardJobSeeker, res.RedirectTo)
	assert.Len(t, res.Session.ID, 64)
	assert.Len(t, store.sessions, 1)
}

func TestSessionService_SyncIdentity_EmployerHint(t *testing.T) {
	store := newMemStore()
	svc, expectTx := newSessionService(t, store, identity("ext-2", "boss@example.rw"))
	expectTx()

	res, err := svc.SyncIdentity(context.Background(), SyncInput{
		IDToken: "tok", Email: "boss@example.rw", RoleHint: "employer", CurrentPath: DashboardEmployer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployer, res.User.Role)
	assert.Equal(t, "boss", res.User.FullName)
	assert.Empty(t, res.RedirectTo)
}

func TestSessionService_SyncIdentity_LinksExistingAccount(t *testing.T) {
	store := newMemStore()
	existing := store.addUser(models.RoleEmployer)
	existing.FullName = "Old Name"

	svc, expectTx := newSessionService(t, store, identity("ext-9", existing.Email))
	expectTx()

	res, err := svc.SyncIdentity(context.Background(), SyncInput{
		IDToken: "tok", Email: existing.Email, DisplayName: "New Name", RoleHint: "job_seeker",
	})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, res.User.ID)
	assert.Equal(t, models.RoleEmployer, res.User.Role, "role of existing user never changes")
	assert.Equal(t, "New Name", store.users[existing.ID].FullName)
	require.NotNil(t, store.users[existing.ID].ExternalID)
	assert.Equal(t, "ext-9", *store.users[existing.ID].ExternalID)
	assert.Len(t, store.users, 1)
}

func TestSessionService_SyncIdentity_Failures(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		svc, _ := newSessionService(t, newMemStore(), identity("x", "x@example.rw"))
		_, err := svc.SyncIdentity(context.Background(), SyncInput{})
		var ve *common.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Fields, 2)
	})

	t.Run("provider unavailable", func(t *testing.T) {
		store := newMemStore()
		svc, _ := newSessionService(t, store, &fakeVerifier{err: common.ErrIdentityUnavailable})
		_, err := svc.SyncIdentity(context.Background(), SyncInput{IDToken: "tok", Email: "a@example.rw"})
		assert.ErrorIs(t, err, common.ErrIdentityUnavailable)
		assert.NotErrorIs(t, err, common.ErrorUnauthorized)
		assert.Empty(t, store.users)
		assert.Empty(t, store.sessions)
	})

	t.Run("invalid token", func(t *testing.T) {
		svc, _ := newSessionService(t, newMemStore(), &fakeVerifier{err: common.ErrInvalidToken})
		_, err := svc.SyncIdentity(context.Background(), SyncInput{IDToken: "tok", Email: "a@example.rw"})
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("email mismatch", func(t *testing.T) {
		svc, _ := newSessionService(t, newMemStore(), identity("x", "other@example.rw"))
		_, err := svc.SyncIdentity(context.Background(), SyncInput{IDToken: "tok", Email: "a@example.rw"})
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})
}

func TestSessionService_SyncIdentity_TokenWithoutEmail(t *testing.T) {
	store := newMemStore()
	admin := store.addUser(models.RoleAdmin)
	svc, _ := newSessionService(t, store, identity("outsider", ""))

	_, err := svc.SyncIdentity(context.Background(), SyncInput{IDToken: "tok", Email: admin.Email})
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Nil(t, admin.ExternalID)
	assert.Empty(t, store.sessions)
}

func TestSessionService_SyncIdentity_UnverifiedEmailNotLinked(t *testing.T) {
	store := newMemStore()
	admin := store.addUser(models.RoleAdmin)
	svc, expectTx := newSessionService(t, store, unverifiedIdentity("outsider", admin.Email))
	expectTx()

	_, err := svc.SyncIdentity(context.Background(), SyncInput{IDToken: "tok", Email: admin.Email})
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Nil(t, admin.ExternalID)
	assert.Empty(t, store.sessions)
	assert.Len(t, store.users, 1)
}

func TestSessionService_SyncIdentity_UnverifiedEmailCreatesNewUser(t *testing.T) {
	store := newMemStore()
	svc, expectTx := newSessionService(t, store, unverifiedIdentity("fresh", "new@example.rw"))
	expectTx()

	res, err := svc.SyncIdentity(context.Background(), SyncInput{IDToken: "tok", Email: "new@example.rw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleJobSeeker, res.User.Role)
	assert.Len(t, store.users, 1)
}

func TestSessionService_RegisterAndLogin(t *testing.T) {
	store := newMemStore()
	svc, expectTx := newSessionService(t, store, nil)
	expectTx()

	res, err := svc.Register(context.Background(), RegisterInput{
		Email: "Grace@example.rw", Password: "correct horse", FullName: "Grace", Role: "employer",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployer, res.User.Role)
	assert.Equal(t, DashboardEmployer, res.RedirectTo)

	logged, err := svc.Login(context.Background(), "grace@example.rw", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, logged.User.ID)

	_, err = svc.Login(context.Background(), "grace@example.rw", "wrong password")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = svc.Login(context.Background(), "nobody@example.rw", "correct horse")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestSessionService_Register_Rejects(t *testing.T) {
	svc, _ := newSessionService(t, newMemStore(), nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "bad", Password: "short"})
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 3)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email: "root@example.rw", Password: "long enough pw", FullName: "Root", Role: "admin",
	})
	assert.ErrorIs(t, err, common.ErrorForbidden)
}

func TestSessionService_Authenticate(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	freezeNow(t, base)

	store := newMemStore()
	user := store.addUser(models.RoleJobSeeker)
	store.sessions["live"] = &models.Session{ID: "live", UserID: user.ID, ExpiresAt: base.Add(time.Minute)}
	store.sessions["old"] = &models.Session{ID: "old", UserID: user.ID, ExpiresAt: base}
	store.sessions["orphan"] = &models.Session{ID: "orphan", UserID: "gone", ExpiresAt: base.Add(time.Hour)}

	svc, _ := newSessionService(t, store, nil)

	got, err := svc.Authenticate(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(context.Background(), "old")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.ErrorIs(t, err, common.ErrSessionExpired)
	assert.NotContains(t, store.sessions, "old")

	_, err = svc.Authenticate(context.Background(), "orphan")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	require.NoError(t, svc.Logout(context.Background(), "live"))
	_, err = svc.Authenticate(context.Background(), "live")
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))
}

func TestSessionService_PurgeExpired(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	freezeNow(t, base)

	store := newMemStore()
	store.sessions["a"] = &models.Session{ID: "a", ExpiresAt: base.Add(-time.Second)}
	store.sessions["b"] = &models.Session{ID: "b", ExpiresAt: base.Add(time.Hour)}

	svc, _ := newSessionService(t, store, nil)
	n, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, store.sessions, "b")
}

func TestRedirectTarget(t *testing.T) {
	tests := []struct {
		role models.Role
		path string
		want string
	}{
		{models.RoleJobSeeker, "/", DashboardJobSeeker},
		{models.RoleJobSeeker, DashboardJobSeeker, ""},
		{models.RoleJobSeeker, DashboardJobSeeker + "/applications", ""},
		{models.RoleEmployer, DashboardJobSeeker, DashboardEmployer},
		{models.RoleAdmin, "/jobs", DashboardAdmin},
		{models.RoleAdmin, "/dashboard/administrator", DashboardAdmin},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RedirectTarget(tt.role, tt.path), "%s at %s", tt.role, tt.path)
	}
}

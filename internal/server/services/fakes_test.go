package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/server/models"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/applications"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/bids"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/categories"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/companies"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/interests"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/opportunities"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/proposals"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/sessions"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/users"
)

// memStore is an in-memory stand-in for the database shared by all fake
// repositories of one test.
type memStore struct {
	mu         sync.Mutex
	seq        int
	users      map[string]*models.User
	sessions   map[string]*models.Session
	companies  map[string]*models.Company
	categories map[string]*models.Category
	opps       map[string]*models.Opportunity
	apps       []*models.Application
	bids       []*models.Bid
	props      []*models.Proposal
	ints       []*models.Interest

	lastFilter *opportunities.Filter
	writes     int
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*models.User{},
		sessions:   map[string]*models.Session{},
		companies:  map[string]*models.Company{},
		categories: map[string]*models.Category{},
		opps:       map[string]*models.Opportunity{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

// fakeRepoManager hands out fakes over one memStore, ignoring the DBTX.
type fakeRepoManager struct{ s *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository            { return &fakeUsers{f.s} }
func (f *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository      { return &fakeSessions{f.s} }
func (f *fakeRepoManager) Companies(dbx.DBTX) companies.Repository    { return &fakeCompanies{f.s} }
func (f *fakeRepoManager) Categories(dbx.DBTX) categories.Repository  { return &fakeCategories{f.s} }
func (f *fakeRepoManager) Opportunities(dbx.DBTX) opportunities.Repository {
	return &fakeOpportunities{f.s}
}
func (f *fakeRepoManager) Applications(dbx.DBTX) applications.Repository { return &fakeApplications{f.s} }
func (f *fakeRepoManager) Bids(dbx.DBTX) bids.Repository                 { return &fakeBids{f.s} }
func (f *fakeRepoManager) Proposals(dbx.DBTX) proposals.Repository       { return &fakeProposals{f.s} }
func (f *fakeRepoManager) Interests(dbx.DBTX) interests.Repository       { return &fakeInterests{f.s} }

// newMockDB returns a sqlmock database for services that open
// transactions; each test declares its Begin/Commit expectations.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsers struct{ s *memStore }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	u.ID = f.s.nextID("u")
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	f.s.users[u.ID] = u
	f.s.writes++
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u, ok := f.s.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) update(id string, fn func(*models.User)) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	f.s.writes++
	return nil
}

func (f *fakeUsers) LinkExternalID(_ context.Context, userID, externalID string) error {
	return f.update(userID, func(u *models.User) { u.ExternalID = &externalID })
}

func (f *fakeUsers) UpdateDisplay(_ context.Context, userID, fullName, photoURL string) error {
	return f.update(userID, func(u *models.User) { u.FullName, u.PhotoURL = fullName, photoURL })
}

func (f *fakeUsers) UpdateRole(_ context.Context, userID string, role models.Role) error {
	return f.update(userID, func(u *models.User) { u.Role = role })
}

func (f *fakeUsers) SetPasswordHash(_ context.Context, userID, hash string) error {
	return f.update(userID, func(u *models.User) { u.PasswordHash = &hash })
}

func (f *fakeUsers) List(_ context.Context, role *models.Role, limit, offset int) ([]*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.User
	for _, u := range f.s.users {
		if role == nil || u.Role == *role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (f *fakeUsers) CountByRole(context.Context) (map[models.Role]int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	counts := map[models.Role]int{}
	for _, u := range f.s.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (f *fakeUsers) Delete(_ context.Context, userID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.users[userID]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.users, userID)
	f.s.writes++
	return nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit < len(list) {
		list = list[:limit]
	}
	return list
}

// --- sessions ---

type fakeSessions struct{ s *memStore }

func (f *fakeSessions) Create(_ context.Context, userID, id string, validity time.Duration) (*models.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	sess := &models.Session{ID: id, UserID: userID, ExpiresAt: now().Add(validity), CreatedAt: now()}
	f.s.sessions[id] = sess
	return sess, nil
}

func (f *fakeSessions) Find(_ context.Context, id string) (*models.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if sess, ok := f.s.sessions[id]; ok {
		return sess, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.sessions, id)
	return nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context, t time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, sess := range f.s.sessions {
		if !sess.ExpiresAt.After(t) {
			delete(f.s.sessions, id)
			n++
		}
	}
	return n, nil
}

// --- companies ---

type fakeCompanies struct{ s *memStore }

func (f *fakeCompanies) Create(_ context.Context, c *models.Company) (*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.companies {
		if existing.OwnerID == c.OwnerID {
			return nil, common.ErrorConflict
		}
	}
	c.ID = f.s.nextID("c")
	f.s.companies[c.ID] = c
	return c, nil
}

func (f *fakeCompanies) GetByID(_ context.Context, id string) (*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if c, ok := f.s.companies[id]; ok {
		return c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCompanies) GetByOwner(_ context.Context, ownerID string) (*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, c := range f.s.companies {
		if c.OwnerID == ownerID {
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCompanies) Update(_ context.Context, c *models.Company) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.companies[c.ID]; !ok {
		return common.ErrorNotFound
	}
	f.s.companies[c.ID] = c
	return nil
}

func (f *fakeCompanies) List(_ context.Context, limit, offset int) ([]*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Company
	for _, c := range f.s.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// --- categories ---

type fakeCategories struct{ s *memStore }

func (f *fakeCategories) Create(_ context.Context, name, icon string) (*models.Category, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, c := range f.s.categories {
		if c.Name == name {
			return nil, common.ErrorConflict
		}
	}
	c := &models.Category{ID: f.s.nextID("cat"), Name: name, Icon: icon}
	f.s.categories[c.ID] = c
	return c, nil
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*models.Category, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if c, ok := f.s.categories[id]; ok {
		return c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCategories) Update(_ context.Context, id, name, icon string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.categories[id]
	if !ok {
		return common.ErrorNotFound
	}
	for _, other := range f.s.categories {
		if other.ID != id && other.Name == name {
			return common.ErrorConflict
		}
	}
	c.Name, c.Icon = name, icon
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.categories[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.categories, id)
	return nil
}

func (f *fakeCategories) ListWithCounts(context.Context) ([]*models.Category, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Category
	for _, c := range f.s.categories {
		cp := *c
		for _, o := range f.s.opps {
			if o.CategoryID != nil && *o.CategoryID == c.ID && o.Visible() {
				cp.OpportunityCount++
			}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- opportunities ---

type fakeOpportunities struct{ s *memStore }

func (f *fakeOpportunities) Create(_ context.Context, o *models.Opportunity) (*models.Opportunity, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o.ID = f.s.nextID("o")
	o.Status, o.IsActive, o.IsFeatured = models.StatusPending, true, false
	o.CreatedAt = now().Add(time.Duration(f.s.seq) * time.Second)
	o.UpdatedAt = o.CreatedAt
	f.s.opps[o.ID] = o
	f.s.writes++
	return o, nil
}

func (f *fakeOpportunities) GetByID(_ context.Context, id string) (*models.Opportunity, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if o, ok := f.s.opps[id]; ok {
		return o, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeOpportunities) Update(_ context.Context, o *models.Opportunity) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.opps[o.ID]; !ok {
		return common.ErrorNotFound
	}
	f.s.opps[o.ID] = o
	f.s.writes++
	return nil
}

func (f *fakeOpportunities) update(id string, fn func(*models.Opportunity)) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.opps[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(o)
	f.s.writes++
	return nil
}

func (f *fakeOpportunities) UpdateModeration(_ context.Context, id string, status models.ModerationStatus, notes *string) error {
	return f.update(id, func(o *models.Opportunity) { o.Status, o.AdminNotes = status, notes })
}

func (f *fakeOpportunities) SetFeatured(_ context.Context, id string, featured bool) error {
	return f.update(id, func(o *models.Opportunity) { o.IsFeatured = featured })
}

func (f *fakeOpportunities) SetActive(_ context.Context, id string, active bool) error {
	return f.update(id, func(o *models.Opportunity) { o.IsActive = active })
}

func (f *fakeOpportunities) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.opps[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.opps, id)
	f.s.writes++
	return nil
}

// List applies the filter the way the SQL does, including deadline order.
func (f *fakeOpportunities) List(_ context.Context, flt opportunities.Filter) ([]*models.Opportunity, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.lastFilter = &flt

	var out []*models.Opportunity
	for _, o := range f.s.opps {
		switch {
		case flt.PostType != nil && o.PostType != *flt.PostType:
		case flt.CategoryID != nil && (o.CategoryID == nil || *o.CategoryID != *flt.CategoryID):
		case flt.Status != nil && o.Status != *flt.Status:
		case flt.PostedBy != nil && o.PostedBy != *flt.PostedBy:
		case flt.ActiveOnly && !o.IsActive:
		case flt.Location != "" && !containsFold(o.Location, flt.Location):
		case flt.Keyword != "" && !containsFold(o.Title, flt.Keyword) && !containsFold(o.Description, flt.Keyword):
		default:
			out = append(out, o)
		}
	}

	at := now()
	sort.Slice(out, func(i, j int) bool {
		if flt.Sort == opportunities.SortDeadline {
			di, dj := fakeDeadline(out[i], at), fakeDeadline(out[j], at)
			if !di.Equal(dj) {
				return di.Before(dj)
			}
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, flt.Limit, flt.Offset), nil
}

// fakeDeadline orders like the repository's deadline expression.
func fakeDeadline(o *models.Opportunity, now time.Time) time.Time {
	d := o.ApplicationDeadline
	switch o.PostType {
	case models.PostTypeAuction:
		d = o.AuctionDate
	case models.PostTypeTender:
		d = o.TenderDeadline
	}
	if d == nil {
		return now
	}
	return *d
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (f *fakeOpportunities) CountByStatus(context.Context) (map[models.ModerationStatus]int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	counts := map[models.ModerationStatus]int{}
	for _, o := range f.s.opps {
		counts[o.Status]++
	}
	return counts, nil
}

// --- claims ---

type fakeApplications struct{ s *memStore }

func (f *fakeApplications) Create(_ context.Context, a *models.Application) (*models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a.ID, a.Status = f.s.nextID("a"), models.ApplicationApplied
	f.s.apps = append(f.s.apps, a)
	f.s.writes++
	return a, nil
}

func (f *fakeApplications) GetByID(_ context.Context, id string) (*models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.apps {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeApplications) ListByUser(_ context.Context, userID string) ([]*models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Application
	for _, a := range f.s.apps {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApplications) ListByOpportunity(_ context.Context, opportunityID string) ([]*models.Application, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Application
	for _, a := range f.s.apps {
		if a.OpportunityID == opportunityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApplications) UpdateStatus(_ context.Context, id string, status models.ApplicationStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.apps {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeApplications) Exists(_ context.Context, userID, opportunityID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.apps {
		if a.UserID == userID && a.OpportunityID == opportunityID {
			return true, nil
		}
	}
	return false, nil
}

type fakeBids struct{ s *memStore }

func (f *fakeBids) Create(_ context.Context, b *models.Bid) (*models.Bid, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	b.ID = f.s.nextID("b")
	f.s.bids = append(f.s.bids, b)
	f.s.writes++
	return b, nil
}

func (f *fakeBids) GetByID(_ context.Context, id string) (*models.Bid, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, b := range f.s.bids {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeBids) filter(keep func(*models.Bid) bool) []*models.Bid {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Bid
	for _, b := range f.s.bids {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (f *fakeBids) ListByUser(_ context.Context, userID string) ([]*models.Bid, error) {
	return f.filter(func(b *models.Bid) bool { return b.UserID == userID }), nil
}

func (f *fakeBids) ListByOpportunity(_ context.Context, opportunityID string) ([]*models.Bid, error) {
	out := f.filter(func(b *models.Bid) bool { return b.OpportunityID == opportunityID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].BidAmount > out[j].BidAmount })
	return out, nil
}

func (f *fakeBids) LockAuction(_ context.Context, opportunityID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.opps[opportunityID]; !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (f *fakeBids) HighestAmount(_ context.Context, opportunityID string) (int64, error) {
	var max int64
	for _, b := range f.filter(func(b *models.Bid) bool { return b.OpportunityID == opportunityID }) {
		if b.BidAmount > max {
			max = b.BidAmount
		}
	}
	return max, nil
}

func (f *fakeBids) Outbid(_ context.Context, opportunityID string) ([]string, error) {
	var ids []string
	for _, b := range f.filter(func(b *models.Bid) bool {
		return b.OpportunityID == opportunityID && b.Status == models.BidWinning
	}) {
		b.Status = models.BidOutbid
		ids = append(ids, b.UserID)
	}
	return ids, nil
}

func (f *fakeBids) Award(_ context.Context, opportunityID, bidID string) ([]string, error) {
	var ids []string
	for _, b := range f.filter(func(b *models.Bid) bool { return b.OpportunityID == opportunityID }) {
		if b.ID == bidID {
			b.Status = models.BidWon
		} else {
			b.Status = models.BidLost
		}
		ids = append(ids, b.UserID)
	}
	return ids, nil
}

type fakeProposals struct{ s *memStore }

func (f *fakeProposals) Create(_ context.Context, p *models.Proposal) (*models.Proposal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p.ID, p.Status = f.s.nextID("p"), models.ApplicationApplied
	f.s.props = append(f.s.props, p)
	f.s.writes++
	return p, nil
}

func (f *fakeProposals) GetByID(_ context.Context, id string) (*models.Proposal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.props {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeProposals) ListByUser(_ context.Context, userID string) ([]*models.Proposal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Proposal
	for _, p := range f.s.props {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProposals) ListByOpportunity(_ context.Context, opportunityID string) ([]*models.Proposal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Proposal
	for _, p := range f.s.props {
		if p.OpportunityID == opportunityID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProposals) UpdateStatus(_ context.Context, id string, status models.ApplicationStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.props {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeProposals) Exists(_ context.Context, userID, opportunityID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.props {
		if p.UserID == userID && p.OpportunityID == opportunityID {
			return true, nil
		}
	}
	return false, nil
}

type fakeInterests struct{ s *memStore }

func (f *fakeInterests) Create(_ context.Context, i *models.Interest) (*models.Interest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	i.ID = f.s.nextID("i")
	f.s.ints = append(f.s.ints, i)
	f.s.writes++
	return i, nil
}

func (f *fakeInterests) ListByUser(_ context.Context, userID string) ([]*models.Interest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Interest
	for _, i := range f.s.ints {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInterests) ListByOpportunity(_ context.Context, opportunityID string) ([]*models.Interest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Interest
	for _, i := range f.s.ints {
		if i.OpportunityID == opportunityID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInterests) Exists(_ context.Context, userID, opportunityID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, i := range f.s.ints {
		if i.UserID == userID && i.OpportunityID == opportunityID {
			return true, nil
		}
	}
	return false, nil
}

// --- fixtures ---

func (m *memStore) addUser(role models.Role) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: m.nextID("u"), Email: fmt.Sprintf("user%d@example.rw", m.seq), Role: role}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addCompany(owner *models.User) *models.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &models.Company{ID: m.nextID("c"), OwnerID: owner.ID, Name: "Acme Rwanda"}
	m.companies[c.ID] = c
	return c
}

// addOpportunity stores a ready-made opportunity posted by owner.
func (m *memStore) addOpportunity(owner *models.User, postType models.PostType, status models.ModerationStatus, active bool) *models.Opportunity {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := "Poster"
	o := &models.Opportunity{
		ID:          m.nextID("o"),
		PostedBy:    owner.ID,
		CompanyName: &name,
		Title:       "Listing " + string(postType),
		Description: "Details",
		Location:    "Kigali",
		PostType:    postType,
		Status:      status,
		IsActive:    active,
		CreatedAt:   time.Now().Add(time.Duration(m.seq) * time.Second),
	}
	m.opps[o.ID] = o
	return o
}

func freezeNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

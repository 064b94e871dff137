package repomanager

import (
	"context"
	"database/sql"

	"github.com/businessinrwanda/marketplace/internal/dbx"
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

// RepositoryManager hands out repositories bound to a DBTX so services can
// run the same code with or without a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Companies(db dbx.DBTX) companies.Repository
	Categories(db dbx.DBTX) categories.Repository
	Opportunities(db dbx.DBTX) opportunities.Repository
	Applications(db dbx.DBTX) applications.Repository
	Bids(db dbx.DBTX) bids.Repository
	Proposals(db dbx.DBTX) proposals.Repository
	Interests(db dbx.DBTX) interests.Repository
}

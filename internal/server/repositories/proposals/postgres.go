package proposals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

const proposalColumns = `id, opportunity_id, user_id, proposal_title, proposal_description, proposed_amount,
	currency, documents_url, cover_letter, status, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProposal(row rowScanner) (*models.Proposal, error) {
	p := &models.Proposal{}
	if err := row.Scan(&p.ID, &p.OpportunityID, &p.UserID, &p.ProposalTitle, &p.ProposalDescription,
		&p.ProposedAmount, &p.Currency, &p.DocumentsURL, &p.CoverLetter, &p.Status,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	query :=
		`INSERT INTO proposals (opportunity_id, user_id, proposal_title, proposal_description, proposed_amount,
		     currency, documents_url, cover_letter, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'applied')
		 RETURNING id, status, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.OpportunityID, p.UserID, p.ProposalTitle, p.ProposalDescription, p.ProposedAmount,
		p.Currency, p.DocumentsURL, p.CoverLetter,
	).Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	p, err := scanProposal(r.db.QueryRowContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) list(ctx context.Context, column, value string) ([]*models.Proposal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE `+column+` = $1 ORDER BY created_at DESC`, value)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Proposal, error) {
	return r.list(ctx, "user_id", userID)
}

func (r *PostgresRepository) ListByOpportunity(ctx context.Context, opportunityID string) ([]*models.Proposal, error) {
	return r.list(ctx, "opportunity_id", opportunityID)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE proposals SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, opportunityID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM proposals WHERE user_id = $1 AND opportunity_id = $2)`,
		userID, opportunityID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

package bids

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

const bidColumns = `id, opportunity_id, user_id, bid_amount, currency, message, documents_url, status, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBid(row rowScanner) (*models.Bid, error) {
	b := &models.Bid{}
	if err := row.Scan(&b.ID, &b.OpportunityID, &b.UserID, &b.BidAmount, &b.Currency,
		&b.Message, &b.DocumentsURL, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

// Create inserts b with the status already decided by the caller.
func (r *PostgresRepository) Create(ctx context.Context, b *models.Bid) (*models.Bid, error) {
	query :=
		`INSERT INTO bids (opportunity_id, user_id, bid_amount, currency, message, documents_url, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		b.OpportunityID, b.UserID, b.BidAmount, b.Currency, b.Message, b.DocumentsURL, b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Bid, error) {
	b, err := scanBid(r.db.QueryRowContext(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg string) ([]*models.Bid, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Bid, error) {
	return r.list(ctx, `SELECT `+bidColumns+` FROM bids WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListByOpportunity returns bids highest first.
func (r *PostgresRepository) ListByOpportunity(ctx context.Context, opportunityID string) ([]*models.Bid, error) {
	return r.list(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE opportunity_id = $1 ORDER BY bid_amount DESC, created_at ASC`,
		opportunityID)
}

func (r *PostgresRepository) LockAuction(ctx context.Context, opportunityID string) error {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM opportunities WHERE id = $1 FOR UPDATE`, opportunityID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) HighestAmount(ctx context.Context, opportunityID string) (int64, error) {
	var amount int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(bid_amount), 0) FROM bids WHERE opportunity_id = $1`, opportunityID).Scan(&amount)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return amount, nil
}

func (r *PostgresRepository) userIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) Outbid(ctx context.Context, opportunityID string) ([]string, error) {
	return r.userIDs(ctx,
		`UPDATE bids SET status = 'outbid', updated_at = now()
		 WHERE opportunity_id = $1 AND status = 'winning'
		 RETURNING user_id`,
		opportunityID)
}

func (r *PostgresRepository) Award(ctx context.Context, opportunityID, bidID string) ([]string, error) {
	return r.userIDs(ctx,
		`UPDATE bids SET status = CASE WHEN id = $2 THEN 'won' ELSE 'lost' END, updated_at = now()
		 WHERE opportunity_id = $1
		 RETURNING user_id`,
		opportunityID, bidID)
}

package interests

import (
	"context"
	"fmt"

	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

const interestColumns = `id, opportunity_id, user_id, message, contact_preference, notify_updates, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, i *models.Interest) (*models.Interest, error) {
	query :=
		`INSERT INTO interests (opportunity_id, user_id, message, contact_preference, notify_updates)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		i.OpportunityID, i.UserID, i.Message, i.ContactPreference, i.NotifyUpdates,
	).Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return i, nil
}

func (r *PostgresRepository) list(ctx context.Context, column, value string) ([]*models.Interest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+interestColumns+` FROM interests WHERE `+column+` = $1 ORDER BY created_at DESC`, value)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Interest
	for rows.Next() {
		i := &models.Interest{}
		if err := rows.Scan(&i.ID, &i.OpportunityID, &i.UserID, &i.Message,
			&i.ContactPreference, &i.NotifyUpdates, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Interest, error) {
	return r.list(ctx, "user_id", userID)
}

func (r *PostgresRepository) ListByOpportunity(ctx context.Context, opportunityID string) ([]*models.Interest, error) {
	return r.list(ctx, "opportunity_id", opportunityID)
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, opportunityID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM interests WHERE user_id = $1 AND opportunity_id = $2)`,
		userID, opportunityID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

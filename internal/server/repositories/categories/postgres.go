package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, name, icon string) (*models.Category, error) {
	c := &models.Category{Name: name, Icon: icon}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, icon) VALUES ($1, $2) RETURNING id, created_at`,
		name, icon,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	c := &models.Category{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, icon, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorConflict
		}
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

func (r *PostgresRepository) Update(ctx context.Context, id, name, icon string) error {
	return r.exec(ctx, `UPDATE categories SET name = $2, icon = $3 WHERE id = $1`, id, name, icon)
}

// Delete removes the category; opportunities filed under it keep existing
// with no category.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
}

func (r *PostgresRepository) ListWithCounts(ctx context.Context) ([]*models.Category, error) {
	query :=
		`SELECT c.id, c.name, c.icon, c.created_at, COUNT(o.id)
		 FROM categories c
		 LEFT JOIN opportunities o
		   ON o.category_id = c.id AND o.status = 'approved' AND o.is_active
		 GROUP BY c.id
		 ORDER BY c.name
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt, &c.OpportunityCount); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

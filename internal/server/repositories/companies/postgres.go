package companies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

const companyColumns = `id, owner_id, name, industry, location, logo_url, description, size, founded_year, website, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*models.Company, error) {
	c := &models.Company{}
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Industry, &c.Location, &c.LogoURL,
		&c.Description, &c.Size, &c.FoundedYear, &c.Website, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts c. A second company for the same owner yields
// common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, c *models.Company) (*models.Company, error) {
	query :=
		`INSERT INTO companies (owner_id, name, industry, location, logo_url, description, size, founded_year, website)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.OwnerID, c.Name, c.Industry, c.Location, c.LogoURL, c.Description, c.Size, c.FoundedYear, c.Website,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.Company, error) {
	c, err := scanCompany(r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Company, error) {
	return r.getOne(ctx, `owner_id = $1`, ownerID)
}

// Update rewrites the editable profile fields of c, refreshing c.UpdatedAt.
func (r *PostgresRepository) Update(ctx context.Context, c *models.Company) error {
	query :=
		`UPDATE companies
		 SET name = $2, industry = $3, location = $4, logo_url = $5, description = $6,
		     size = $7, founded_year = $8, website = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Industry, c.Location, c.LogoURL, c.Description, c.Size, c.FoundedYear, c.Website,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

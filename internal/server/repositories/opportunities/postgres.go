package opportunities

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

const opportunityColumns = `id, posted_by, company_id, company_name, category_id, title, description,
	requirements, responsibilities, location, employment_type, post_type, status, admin_notes,
	is_active, is_featured, application_deadline, auction_date, viewing_dates, auction_items,
	tender_deadline, tender_requirements, tender_documents, additional_data, created_at, updated_at`

// deadlineExpr is the per-type deadline used for deadline sorting.
// Opportunities without one are treated as due now.
const deadlineExpr = `COALESCE(CASE post_type
		WHEN 'auction' THEN auction_date
		WHEN 'tender' THEN tender_deadline
		ELSE application_deadline END, now())`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(row rowScanner) (*models.Opportunity, error) {
	o := &models.Opportunity{}
	var viewing, items, treq, tdocs, extra []byte

	err := row.Scan(&o.ID, &o.PostedBy, &o.CompanyID, &o.CompanyName, &o.CategoryID, &o.Title, &o.Description,
		&o.Requirements, &o.Responsibilities, &o.Location, &o.EmploymentType, &o.PostType, &o.Status, &o.AdminNotes,
		&o.IsActive, &o.IsFeatured, &o.ApplicationDeadline, &o.AuctionDate, &viewing, &items,
		&o.TenderDeadline, &treq, &tdocs, &extra, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		raw  []byte
		dest any
	}{
		{viewing, &o.ViewingDates},
		{items, &o.AuctionItems},
		{treq, &o.TenderRequirements},
		{tdocs, &o.TenderDocuments},
		{extra, &o.AdditionalData},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dest); err != nil {
			return nil, fmt.Errorf("decode jsonb: %w", err)
		}
	}
	return o, nil
}

func jsonList(v []string) []byte {
	if v == nil {
		return []byte("[]")
	}
	b, _ := json.Marshal(v)
	return b
}

func jsonObject(v map[string]any) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}

// Create inserts o as pending, active and not featured.
func (r *PostgresRepository) Create(ctx context.Context, o *models.Opportunity) (*models.Opportunity, error) {
	extra, err := jsonObject(o.AdditionalData)
	if err != nil {
		return nil, fmt.Errorf("encode additional data: %w", err)
	}

	query :=
		`INSERT INTO opportunities (posted_by, company_id, company_name, category_id, title, description,
		     requirements, responsibilities, location, employment_type, post_type, status, is_active, is_featured,
		     application_deadline, auction_date, viewing_dates, auction_items, tender_deadline,
		     tender_requirements, tender_documents, additional_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending', TRUE, FALSE,
		     $12, $13, $14, $15, $16, $17, $18, $19)
		 RETURNING id, status, is_active, is_featured, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		o.PostedBy, o.CompanyID, o.CompanyName, o.CategoryID, o.Title, o.Description,
		o.Requirements, o.Responsibilities, o.Location, o.EmploymentType, o.PostType,
		o.ApplicationDeadline, o.AuctionDate, jsonList(o.ViewingDates), jsonList(o.AuctionItems), o.TenderDeadline,
		jsonList(o.TenderRequirements), jsonList(o.TenderDocuments), extra,
	).Scan(&o.ID, &o.Status, &o.IsActive, &o.IsFeatured, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Opportunity, error) {
	o, err := scanOpportunity(r.db.QueryRowContext(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

// Update rewrites the owner-editable fields and the moderation status of o.
// Poster, post type and admin flags are left alone.
func (r *PostgresRepository) Update(ctx context.Context, o *models.Opportunity) error {
	extra, err := jsonObject(o.AdditionalData)
	if err != nil {
		return fmt.Errorf("encode additional data: %w", err)
	}

	query :=
		`UPDATE opportunities
		 SET category_id = $2, title = $3, description = $4, requirements = $5, responsibilities = $6,
		     location = $7, employment_type = $8, status = $9, application_deadline = $10, auction_date = $11,
		     viewing_dates = $12, auction_items = $13, tender_deadline = $14, tender_requirements = $15,
		     tender_documents = $16, additional_data = $17, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		o.ID, o.CategoryID, o.Title, o.Description, o.Requirements, o.Responsibilities,
		o.Location, o.EmploymentType, o.Status, o.ApplicationDeadline, o.AuctionDate,
		jsonList(o.ViewingDates), jsonList(o.AuctionItems), o.TenderDeadline, jsonList(o.TenderRequirements),
		jsonList(o.TenderDocuments), extra,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) UpdateModeration(ctx context.Context, id string, status models.ModerationStatus, notes *string) error {
	return r.exec(ctx,
		`UPDATE opportunities SET status = $2, admin_notes = $3, updated_at = now() WHERE id = $1`,
		id, status, notes)
}

func (r *PostgresRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	return r.exec(ctx,
		`UPDATE opportunities SET is_featured = $2, updated_at = now() WHERE id = $1`, id, featured)
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx,
		`UPDATE opportunities SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
}

// Delete is permanent; claims go with the row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
}

// buildList renders the query and arguments for f.
func buildList(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.PostType != nil {
		where = append(where, "post_type = "+arg(string(*f.PostType)))
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = "+arg(*f.CategoryID))
	}
	if f.Status != nil {
		where = append(where, "status = "+arg(string(*f.Status)))
	}
	if f.PostedBy != nil {
		where = append(where, "posted_by = "+arg(*f.PostedBy))
	}
	if f.ActiveOnly {
		where = append(where, "is_active")
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		where = append(where, "location ILIKE "+arg(likePattern(s)))
	}
	if s := strings.TrimSpace(f.Keyword); s != "" {
		p := arg(likePattern(s))
		where = append(where, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + opportunityColumns + ` FROM opportunities`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if f.Sort == SortDeadline {
		b.WriteString(" ORDER BY " + deadlineExpr + " ASC, created_at DESC")
	} else {
		b.WriteString(" ORDER BY created_at DESC")
	}
	b.WriteString(" LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset))
	return b.String(), args
}

// likePattern escapes LIKE metacharacters in s and wraps it for a substring
// match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Opportunity, error) {
	query, args := buildList(f)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (map[models.ModerationStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM opportunities GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ModerationStatus]int)
	for rows.Next() {
		var st models.ModerationStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		counts[st] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return counts, nil
}

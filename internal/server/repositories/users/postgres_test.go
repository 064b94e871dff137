package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

var userCols = []string{"id", "email", "password_hash", "external_id", "role", "full_name",
	"photo_url", "phone", "location", "bio", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(email,.*\)\s*VALUES\s*\(\$1,.*\$9\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`).
		WithArgs("aline@example.rw", nil, nil, "job_seeker", "Aline", "", "", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u-1", now, now))

	u := &models.User{Email: "aline@example.rw", Role: models.RoleJobSeeker, FullName: "Aline"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "dup@example.rw", Role: models.RoleEmployer})
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want common.ErrorConflict, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "a@b.rw", Role: models.RoleEmployer})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	hash := "$2a$10$hash"
	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*email,.*FROM\s+users\s+WHERE\s+email\s*=\s*lower\(\$1\)$`).
		WithArgs("Aline@Example.rw").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "aline@example.rw", hash, nil, "employer", "Aline", "", "", "Kigali", "", now, now))

	got, err := repo.GetByEmail(context.Background(), "Aline@Example.rw")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.Role != models.RoleEmployer || got.Location != "Kigali" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.PasswordHash == nil || *got.PasswordHash != hash {
		t.Fatalf("password hash not scanned: %+v", got.PasswordHash)
	}
	if got.ExternalID != nil {
		t.Fatalf("expected nil external id, got %v", *got.ExternalID)
	}
}

func TestGetByExternalID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+external_id\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByExternalID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdateRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+users\s+SET\s+role\s*=\s*\$2`).
		WithArgs("u-1", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+users\s+SET\s+role\s*=\s*\$2`).
		WithArgs("u-2", "admin").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateRole(context.Background(), "u-1", models.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole error: %v", err)
	}
	if err := repo.UpdateRole(context.Background(), "u-2", models.RoleAdmin); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList_FilterByRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)FROM\s+users.*ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$2\s+OFFSET\s+\$3`).
		WithArgs("employer", 20, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "a@b.rw", nil, nil, "employer", "A", "", "", "", "", now, now).
			AddRow("u-2", "c@d.rw", nil, "ext-2", "employer", "C", "", "", "", "", now, now))

	role := models.RoleEmployer
	got, err := repo.List(context.Background(), &role, 20, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[1].ExternalID == nil || *got[1].ExternalID != "ext-2" {
		t.Fatalf("unexpected users: %+v", got)
	}
}

func TestCountByRole(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+role,\s*COUNT\(\*\)\s+FROM\s+users\s+GROUP\s+BY\s+role`).
		WillReturnRows(sqlmock.NewRows([]string{"role", "count"}).
			AddRow("job_seeker", 12).
			AddRow("employer", 3))

	got, err := repo.CountByRole(context.Background())
	if err != nil {
		t.Fatalf("CountByRole error: %v", err)
	}
	if got[models.RoleJobSeeker] != 12 || got[models.RoleEmployer] != 3 || got[models.RoleAdmin] != 0 {
		t.Fatalf("unexpected counts: %v", got)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "u-9"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/dbx"
	"github.com/businessinrwanda/marketplace/internal/server/auth"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

// EnsureAdmin creates an admin account for email, or promotes an existing
// one and resets its password. created reports which of the two happened.
func (s *SessionService) EnsureAdmin(ctx context.Context, email, password, fullName string) (user *models.User, created bool, err error) {
	email = normalizeEmail(email)
	ve := &common.ValidationError{}
	if email == "" || !strings.Contains(email, "@") {
		ve.Add("email", "must be a valid email address")
	}
	if len(password) < auth.MinPasswordLength {
		ve.Add("password", fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength))
	}
	if err := ve.OrNil(); err != nil {
		return nil, false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		existing, err := users.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			if blank(fullName) {
				fullName = "Administrator"
			}
			user, err = users.Create(ctx, &models.User{
				Email:        email,
				PasswordHash: &hash,
				Role:         models.RoleAdmin,
				FullName:     strings.TrimSpace(fullName),
			})
			created = true
			return err
		case err != nil:
			return err
		}

		if err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return err
		}
		if err := users.SetPasswordHash(ctx, existing.ID, hash); err != nil {
			return err
		}
		user, err = users.GetByID(ctx, existing.ID)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	s.log.Info(ctx, "admin account ensured", "user_id", user.ID, "created", created)
	return user, created, nil
}

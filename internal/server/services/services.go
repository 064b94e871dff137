// Package services contains server-side business logic. Every operation
// receives the acting user explicitly; nil means an anonymous caller.
package services

import (
	"strings"
	"time"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

// now is a seam for tests.
var now = time.Now

func requireUser(u *models.User) error {
	if u == nil {
		return common.ErrorUnauthorized
	}
	return nil
}

func requireAdmin(u *models.User) error {
	if u == nil {
		return common.ErrorUnauthorized
	}
	if !u.IsAdmin() {
		return common.ErrorForbidden
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func clampPage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Package models defines server-side data models persisted in the database.
package models

import (
	"fmt"
	"time"
)

// Role decides which dashboards and actions a user may reach.
type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// ParseRole converts a raw string to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"`
	ExternalID   *string   `json:"-"`
	Role         Role      `json:"role"`
	FullName     string    `json:"fullName"`
	PhotoURL     string    `json:"photoURL,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Location     string    `json:"location,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin is nil-safe so callers can pass an anonymous viewer.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

package models

import (
	"fmt"
	"time"
)

// PostType selects which claim variant and type-specific fields apply to an
// opportunity.
type PostType string

const (
	PostTypeJob          PostType = "job"
	PostTypeAuction      PostType = "auction"
	PostTypeTender       PostType = "tender"
	PostTypeAnnouncement PostType = "announcement"
)

func ParsePostType(s string) (PostType, error) {
	p := PostType(s)
	switch p {
	case PostTypeJob, PostTypeAuction, PostTypeTender, PostTypeAnnouncement:
		return p, nil
	}
	return "", fmt.Errorf("unknown post type %q", s)
}

// ModerationStatus is controlled exclusively by admins.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

func ParseModerationStatus(s string) (ModerationStatus, error) {
	st := ModerationStatus(s)
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown moderation status %q", s)
}

// Opportunity is a single listing of any post type. Exactly one of CompanyID
// and CompanyName identifies the poster.
type Opportunity struct {
	ID               string           `json:"id"`
	PostedBy         string           `json:"postedBy"`
	CompanyID        *string          `json:"companyId"`
	CompanyName      *string          `json:"companyName"`
	CategoryID       *string          `json:"categoryId"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Requirements     string           `json:"requirements"`
	Responsibilities *string          `json:"responsibilities,omitempty"`
	Location         string           `json:"location"`
	EmploymentType   *string          `json:"type,omitempty"`
	PostType         PostType         `json:"postType"`
	Status           ModerationStatus `json:"status"`
	AdminNotes       *string          `json:"adminNotes,omitempty"`
	IsActive         bool             `json:"isActive"`
	IsFeatured       bool             `json:"isFeatured"`

	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`

	AuctionDate  *time.Time `json:"auctionDate,omitempty"`
	ViewingDates []string   `json:"viewingDates,omitempty"`
	AuctionItems []string   `json:"auctionItems,omitempty"`

	TenderDeadline     *time.Time `json:"tenderDeadline,omitempty"`
	TenderRequirements []string   `json:"tenderRequirements,omitempty"`
	TenderDocuments    []string   `json:"tenderDocuments,omitempty"`

	AdditionalData map[string]any `json:"additionalData,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasValidPoster checks the poster identity invariant:
// CompanyID == nil exactly when CompanyName != nil.
func (o *Opportunity) HasValidPoster() bool {
	return (o.CompanyID == nil) == (o.CompanyName != nil)
}

// Visible reports whether anonymous and non-owning users may see o.
func (o *Opportunity) Visible() bool {
	return o.Status == StatusApproved && o.IsActive
}

// VisibleTo reports whether viewer (possibly nil) may see o.
func (o *Opportunity) VisibleTo(viewer *User) bool {
	if o.Visible() || viewer.IsAdmin() {
		return true
	}
	return viewer != nil && viewer.ID == o.PostedBy
}

// ManageableBy reports whether user may edit, toggle or delete o.
func (o *Opportunity) ManageableBy(user *User) bool {
	return user.IsAdmin() || (user != nil && user.ID == o.PostedBy)
}

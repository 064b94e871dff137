package models

import (
	"fmt"
	"time"
)

// ApplicationStatus tracks applications and tender proposals.
type ApplicationStatus string

const (
	ApplicationApplied            ApplicationStatus = "applied"
	ApplicationReviewed           ApplicationStatus = "reviewed"
	ApplicationInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationRejected           ApplicationStatus = "rejected"
	ApplicationHired              ApplicationStatus = "hired"
)

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case ApplicationApplied, ApplicationReviewed, ApplicationInterviewScheduled, ApplicationRejected, ApplicationHired:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// BidStatus tracks a bid through an auction.
type BidStatus string

const (
	BidActive  BidStatus = "active"
	BidOutbid  BidStatus = "outbid"
	BidWinning BidStatus = "winning"
	BidWon     BidStatus = "won"
	BidLost    BidStatus = "lost"
)

type Application struct {
	ID            string            `json:"id"`
	OpportunityID string            `json:"jobId"`
	UserID        string            `json:"userId"`
	CoverLetter   string            `json:"coverLetter"`
	ResumeURL     string            `json:"resumeUrl,omitempty"`
	DocumentsURL  string            `json:"documentsUrl,omitempty"`
	Status        ApplicationStatus `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type Bid struct {
	ID            string    `json:"id"`
	OpportunityID string    `json:"jobId"`
	UserID        string    `json:"userId"`
	BidAmount     int64     `json:"bidAmount"`
	Currency      string    `json:"currency"`
	Message       string    `json:"message,omitempty"`
	DocumentsURL  string    `json:"documentsUrl,omitempty"`
	Status        BidStatus `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Proposal struct {
	ID                  string            `json:"id"`
	OpportunityID       string            `json:"jobId"`
	UserID              string            `json:"userId"`
	ProposalTitle       string            `json:"proposalTitle"`
	ProposalDescription string            `json:"proposalDescription"`
	ProposedAmount      *int64            `json:"proposedAmount,omitempty"`
	Currency            string            `json:"currency,omitempty"`
	DocumentsURL        string            `json:"documentsUrl,omitempty"`
	CoverLetter         string            `json:"coverLetter,omitempty"`
	Status              ApplicationStatus `json:"status"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// Interest registers a user for an announcement. Registration is terminal,
// so there is no status.
type Interest struct {
	ID                string    `json:"id"`
	OpportunityID     string    `json:"jobId"`
	UserID            string    `json:"userId"`
	Message           string    `json:"message,omitempty"`
	ContactPreference string    `json:"contactPreference"`
	NotifyUpdates     bool      `json:"notifyUpdates"`
	CreatedAt         time.Time `json:"createdAt"`
}

// MyClaims is every claim one user has made, grouped by variant.
type MyClaims struct {
	Applications []*Application `json:"applications"`
	Bids         []*Bid         `json:"bids"`
	Proposals    []*Proposal    `json:"proposals"`
	Interests    []*Interest    `json:"interests"`
}

package models

import "time"

// Company is an employer's public profile. Each employer owns at most one.
type Company struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry,omitempty"`
	Location    string    `json:"location,omitempty"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	Description string    `json:"description,omitempty"`
	Size        string    `json:"size,omitempty"`
	FoundedYear *int      `json:"foundedYear,omitempty"`
	Website     string    `json:"website,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Category struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Icon             string    `json:"icon,omitempty"`
	OpportunityCount int       `json:"opportunityCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

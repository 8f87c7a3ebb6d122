package model

import (
	"time"

	"github.com/google/uuid"
)

type StudioProfile struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	Phone               *string    `json:"phone,omitempty"`
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty"`
	PhotographyType     *string    `json:"photographyType,omitempty"`
	EventTypes          []string   `json:"eventTypes"`
	Budget              *string    `json:"budget,omitempty"`
	PreferredDate       *time.Time `json:"preferredDate,omitempty"`
	SubscribeNewsletter bool       `json:"subscribeNewsletter"`
	IsActive            bool       `json:"isActive"`
	EmailVerified       bool       `json:"emailVerified"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (s *StudioProfile) Principal() Principal {
	return Principal{
		ID:        s.ID,
		Tenant:    TenantStudio,
		Email:     s.Email,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Active:    s.IsActive,
	}
}

// StudioRegistration carries the studio-specific fields of a registration.
type StudioRegistration struct {
	FirstName           string
	LastName            string
	Phone               *string
	DateOfBirth         *time.Time
	PhotographyType     *string
	EventTypes          []string
	Budget              *string
	PreferredDate       *time.Time
	SubscribeNewsletter bool
}

// StudioProfileUpdate is a partial update; nil fields are left unchanged.
type StudioProfileUpdate struct {
	FirstName           *string
	LastName            *string
	Phone               *string
	DateOfBirth         *time.Time
	PhotographyType     *string
	EventTypes          []string
	Budget              *string
	PreferredDate       *time.Time
	SubscribeNewsletter *bool
}

// Empty reports whether the update changes nothing.
func (u StudioProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Phone == nil && u.DateOfBirth == nil &&
		u.PhotographyType == nil && u.EventTypes == nil && u.Budget == nil &&
		u.PreferredDate == nil && u.SubscribeNewsletter == nil
}

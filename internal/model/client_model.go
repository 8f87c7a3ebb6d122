package model

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Phone       *string      `json:"phone,omitempty"`
	TotalEvents int          `json:"totalEvents"`
	TotalSpent  int64        `json:"totalSpent"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Events      []EventBrief `json:"events"`
}

// ClientBrief is the client shape embedded in an event.
type ClientBrief struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone *string   `json:"phone,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventPlanning   EventStatus = "PLANNING"
	EventInProgress EventStatus = "IN_PROGRESS"
	EventEditing    EventStatus = "EDITING"
	EventCompleted  EventStatus = "COMPLETED"
	EventDelivered  EventStatus = "DELIVERED"
	EventCancelled  EventStatus = "CANCELLED"
)

type Event struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"userId"`
	ClientID      *uuid.UUID   `json:"clientId,omitempty"`
	Title         string       `json:"title"`
	Description   *string      `json:"description,omitempty"`
	EventType     string       `json:"eventType"`
	EventDate     time.Time    `json:"eventDate"`
	EventLocation *string      `json:"eventLocation,omitempty"`
	Duration      *int         `json:"duration,omitempty"`
	Budget        string       `json:"budget"`
	ClientName    string       `json:"clientName"`
	ClientEmail   string       `json:"clientEmail"`
	ClientPhone   *string      `json:"clientPhone,omitempty"`
	Status        EventStatus  `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Client        *ClientBrief `json:"client,omitempty"`
}

// EventUpdate is a partial update; nil fields are left unchanged.
type EventUpdate struct {
	Title         *string
	Description   *string
	EventType     *string
	EventDate     *time.Time
	EventLocation *string
	Duration      *int
	Budget        *string
	ClientName    *string
	ClientPhone   *string
	Status        *EventStatus
}

// EventBrief is the short event shape listed under a client.
type EventBrief struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	EventDate time.Time   `json:"eventDate"`
	Status    EventStatus `json:"status"`
}

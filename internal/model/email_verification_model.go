package model

import (
	"time"

	"github.com/google/uuid"
)

type EmailVerification struct {
	Token        string
	StudioUserID uuid.UUID
	ExpiresAt    time.Time
}

package model

import (
	"time"

	"github.com/google/uuid"
)

const RoleSuperAdmin = "SUPER_ADMIN"

type AdminProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *AdminProfile) Principal() Principal {
	return Principal{
		ID:     a.ID,
		Tenant: TenantAdmin,
		Email:  a.Email,
		Role:   a.Role,
		Active: a.IsActive,
	}
}

// AdminRegistration carries the admin-specific fields of a registration.
type AdminRegistration struct {
	Name string
	Role string
}

// AdminProfileUpdate is a partial update; nil fields are left unchanged.
type AdminProfileUpdate struct {
	Name *string
}

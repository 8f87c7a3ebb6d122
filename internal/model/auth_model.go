package model

import "github.com/google/uuid"

// Tenant names one of the two identity namespaces. Records never cross tenants.
type Tenant string

const (
	TenantAdmin  Tenant = "admin"
	TenantStudio Tenant = "studio"
)

// Credential is the only shape that carries a password hash. It never leaves
// the service layer.
type Credential struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsActive     bool
}

// Principal is the caller identity attached to an authenticated request and
// embedded (minus Active) into session tokens.
type Principal struct {
	ID        uuid.UUID `json:"id"`
	Tenant    Tenant    `json:"tenant"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Active    bool      `json:"-"`
}

// Profile is implemented by the secret-free read projections of each tenant.
type Profile interface {
	Principal() Principal
}

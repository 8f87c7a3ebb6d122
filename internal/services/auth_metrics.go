package services

import "github.com/tankharsh/photocap/internal/model"

// Auth operations and outcomes reported to an AuthRecorder.
const (
	OpRegister       = "register"
	OpLogin          = "login"
	OpLogout         = "logout"
	OpChangePassword = "change_password"

	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid_credentials"
	OutcomeDeactivated = "deactivated"
	OutcomeDuplicate   = "duplicate"
	OutcomeRejected    = "rejected"
)

// AuthRecorder counts auth outcomes per tenant.
type AuthRecorder interface {
	RecordAuth(tenant model.Tenant, op, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuth(model.Tenant, string, string) {}

package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrDuplicateIdentity  = errors.New("user with this email already exists")
	ErrNotFound           = errors.New("not found")

	// ErrCurrentPasswordMismatch is an ErrInvalidCredentials raised by
	// ChangePassword; the boundary reports it as a bad request.
	ErrCurrentPasswordMismatch = fmt.Errorf("%w: current password is incorrect", ErrInvalidCredentials)

	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")

	// ErrEmailRejected is wrapped by EmailValidator implementations that
	// refuse an address.
	ErrEmailRejected = errors.New("email address rejected")
)

package services

import (
	"context"
	"fmt"
	"net/mail"
)

// EmailValidator vets an address before registration. Refusals wrap
// ErrEmailRejected; any other error means the check itself failed.
type EmailValidator interface {
	Validate(ctx context.Context, email string) error
}

// LocalValidator only checks the address parses.
type LocalValidator struct{}

func NewLocalValidator() *LocalValidator {
	return &LocalValidator{}
}

func (v *LocalValidator) Validate(_ context.Context, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: %v", ErrEmailRejected, err)
	}
	return nil
}

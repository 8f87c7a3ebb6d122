package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/tankharsh/photocap/internal/logger"
	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/repository"
	"github.com/tankharsh/photocap/internal/validation"

	"github.com/google/uuid"
)

const VerificationTokenTTL = 24 * time.Hour

type VerificationStore interface {
	Create(ctx context.Context, studioUserID uuid.UUID, token string, exp time.Time) error
	GetStudioUserID(ctx context.Context, token string, now time.Time) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}

type EmailVerifiedSetter interface {
	SetEmailVerified(ctx context.Context, id uuid.UUID) error
}

// EmailVerificationService mails verification links to new studio users and
// redeems them.
type EmailVerificationService struct {
	tokens    VerificationStore
	users     EmailVerifiedSetter
	sender    EmailSender
	validator EmailValidator
	baseURL   string
	now       func() time.Time
	log       *slog.Logger
}

func NewEmailVerificationService(
	tokens VerificationStore,
	users EmailVerifiedSetter,
	sender EmailSender,
	validator EmailValidator,
	baseURL string,
	log *slog.Logger,
) *EmailVerificationService {
	return &EmailVerificationService{
		tokens:    tokens,
		users:     users,
		sender:    sender,
		validator: validator,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
		log:       logger.WithComponent(log, "email_verification"),
	}
}

// CheckAddress runs the configured EmailValidator. A refusal becomes a
// field-level validation error; an unreachable checker does not block
// registration.
func (s *EmailVerificationService) CheckAddress(ctx context.Context, email string) error {
	err := s.validator.Validate(ctx, email)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrEmailRejected) {
		msg := strings.TrimPrefix(err.Error(), ErrEmailRejected.Error()+": ")
		return validation.NewFieldError("email", msg)
	}
	s.log.Warn("email check unavailable, accepting address", "error", err)
	return nil
}

// Send stores a fresh token for the user and mails its link.
func (s *EmailVerificationService) Send(ctx context.Context, profile *model.StudioProfile) error {
	token := uuid.NewString()
	if err := s.tokens.Create(ctx, profile.ID, token, s.now().Add(VerificationTokenTTL)); err != nil {
		return err
	}
	link := s.baseURL + "/api/studio/verify-email?token=" + url.QueryEscape(token)
	if err := s.sender.SendVerificationEmail(ctx, profile.Email, link); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// Verify redeems a token and marks the user's email verified.
func (s *EmailVerificationService) Verify(ctx context.Context, token string) error {
	id, err := s.tokens.GetStudioUserID(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return err
	}
	if err := s.users.SetEmailVerified(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return err
	}
	if err := s.tokens.Delete(ctx, token); err != nil {
		s.log.Warn("could not delete redeemed token", "error", err)
	}
	s.log.Info("email verified", "user_id", id)
	return nil
}

// StudioHooks wires address checks and verification mail into studio
// registration.
func (s *EmailVerificationService) StudioHooks() AuthHooks[*model.StudioProfile] {
	return AuthHooks[*model.StudioProfile]{
		BeforeRegister: s.CheckAddress,
		AfterRegister:  s.Send,
	}
}

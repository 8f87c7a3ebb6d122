package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tankharsh/photocap/internal/logger"
	"github.com/tankharsh/photocap/internal/middleware"
	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/repository"
	"github.com/tankharsh/photocap/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore is one tenant's identity table. P is the secret-free
// profile projection, R the registration fields and U the partial update.
type CredentialStore[P model.Profile, R, U any] interface {
	FindCredentialByEmail(ctx context.Context, email string) (*model.Credential, error)
	FindCredentialByID(ctx context.Context, id uuid.UUID) (*model.Credential, error)
	Create(ctx context.Context, email, passwordHash string, fields R) (P, error)
	FindByID(ctx context.Context, id uuid.UUID) (P, error)
	Update(ctx context.Context, id uuid.UUID, fields U) (P, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// TenantConfig is what differs between the two instantiations.
type TenantConfig struct {
	Tenant     model.Tenant
	TTL        time.Duration
	BcryptCost int
}

// AuthHooks run around registration. Both are optional.
type AuthHooks[P model.Profile] struct {
	// BeforeRegister may veto an address; its error is returned as is.
	BeforeRegister func(ctx context.Context, email string) error
	// AfterRegister runs once the identity exists; failures are logged only.
	AfterRegister func(ctx context.Context, profile P) error
}

// Session is the result of a successful login or registration.
type Session[P model.Profile] struct {
	Profile P
	Token   string
}

// AuthService implements register/login/profile/password flows once for
// any tenant.
type AuthService[P model.Profile, R, U any] struct {
	store   CredentialStore[P, R, U]
	codec   *middleware.TokenCodec
	cfg     TenantConfig
	hooks   AuthHooks[P]
	metrics AuthRecorder
	log     *slog.Logger

	// compared against when the email is unknown so both failure paths pay
	// for one bcrypt comparison
	dummyHash []byte
}

func NewAuthService[P model.Profile, R, U any](
	store CredentialStore[P, R, U],
	codec *middleware.TokenCodec,
	cfg TenantConfig,
	log *slog.Logger,
) (*AuthService[P, R, U], error) {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("photocap-timing-equalizer"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare %s auth: %w", cfg.Tenant, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthService[P, R, U]{
		store:     store,
		codec:     codec,
		cfg:       cfg,
		metrics:   nopRecorder{},
		log:       logger.WithTenant(logger.WithComponent(log, "auth"), string(cfg.Tenant)),
		dummyHash: dummy,
	}, nil
}

// WithHooks installs registration hooks.
func (s *AuthService[P, R, U]) WithHooks(h AuthHooks[P]) *AuthService[P, R, U] {
	s.hooks = h
	return s
}

// WithMetrics installs an outcome recorder.
func (s *AuthService[P, R, U]) WithMetrics(m AuthRecorder) *AuthService[P, R, U] {
	if m != nil {
		s.metrics = m
	}
	return s
}

func (s *AuthService[P, R, U]) Tenant() model.Tenant { return s.cfg.Tenant }

func (s *AuthService[P, R, U]) TTL() time.Duration { return s.cfg.TTL }

// Register creates an identity and issues its first session token.
func (s *AuthService[P, R, U]) Register(ctx context.Context, email, password string, fields R) (*Session[P], error) {
	email = repository.NormalizeEmail(email)

	if _, err := s.store.FindCredentialByEmail(ctx, email); err == nil {
		s.record(OpRegister, OutcomeDuplicate)
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if s.hooks.BeforeRegister != nil {
		if err := s.hooks.BeforeRegister(ctx, email); err != nil {
			s.record(OpRegister, OutcomeRejected)
			return nil, err
		}
	}

	hash, err := hashPassword("password", password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.Create(ctx, email, string(hash), fields)
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			s.record(OpRegister, OutcomeDuplicate)
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	token, err := s.codec.Issue(profile.Principal(), s.cfg.TTL)
	if err != nil {
		return nil, err
	}

	if s.hooks.AfterRegister != nil {
		if err := s.hooks.AfterRegister(ctx, profile); err != nil {
			s.log.Warn("post-registration step failed", "email", email, "error", err)
		}
	}

	s.record(OpRegister, OutcomeSuccess)
	s.log.Info("identity registered", "user_id", profile.Principal().ID)
	return &Session[P]{Profile: profile, Token: token}, nil
}

// Login checks credentials. Unknown email and wrong password are the same
// ErrInvalidCredentials.
func (s *AuthService[P, R, U]) Login(ctx context.Context, email, password string) (*Session[P], error) {
	cred, err := s.store.FindCredentialByEmail(ctx, repository.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.record(OpLogin, OutcomeInvalid)
		return nil, ErrInvalidCredentials
	}

	// compare before the active check so a deactivated account costs the
	// same as a wrong password
	mismatch := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password))
	if !cred.IsActive {
		s.record(OpLogin, OutcomeDeactivated)
		return nil, ErrAccountDeactivated
	}
	if mismatch != nil {
		s.record(OpLogin, OutcomeInvalid)
		return nil, ErrInvalidCredentials
	}

	profile, err := s.store.FindByID(ctx, cred.ID)
	if err != nil {
		return nil, notFoundErr(err)
	}

	token, err := s.codec.Issue(profile.Principal(), s.cfg.TTL)
	if err != nil {
		return nil, err
	}

	s.record(OpLogin, OutcomeSuccess)
	s.log.Info("login succeeded", "user_id", cred.ID)
	return &Session[P]{Profile: profile, Token: token}, nil
}

// Logout is stateless: tokens are not revoked, the caller drops the cookie.
func (s *AuthService[P, R, U]) Logout(_ context.Context, p *model.Principal) {
	s.record(OpLogout, OutcomeSuccess)
	if p != nil {
		s.log.Info("logout", "user_id", p.ID)
	}
}

func (s *AuthService[P, R, U]) GetProfile(ctx context.Context, id uuid.UUID) (P, error) {
	profile, err := s.store.FindByID(ctx, id)
	if err != nil {
		var zero P
		return zero, notFoundErr(err)
	}
	return profile, nil
}

func (s *AuthService[P, R, U]) UpdateProfile(ctx context.Context, id uuid.UUID, fields U) (P, error) {
	profile, err := s.store.Update(ctx, id, fields)
	if err != nil {
		var zero P
		return zero, notFoundErr(err)
	}
	return profile, nil
}

// ChangePassword replaces the hash only when current matches it.
func (s *AuthService[P, R, U]) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	cred, err := s.store.FindCredentialByID(ctx, id)
	if err != nil {
		return notFoundErr(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(current)); err != nil {
		s.record(OpChangePassword, OutcomeInvalid)
		return ErrCurrentPasswordMismatch
	}

	hash, err := hashPassword("newPassword", next, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, id, string(hash)); err != nil {
		return notFoundErr(err)
	}

	s.record(OpChangePassword, OutcomeSuccess)
	s.log.Info("password changed", "user_id", id)
	return nil
}

// LoadPrincipal implements middleware.PrincipalLoader.
func (s *AuthService[P, R, U]) LoadPrincipal(ctx context.Context, id uuid.UUID) (*model.Principal, error) {
	profile, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, middleware.ErrPrincipalNotFound
		}
		return nil, err
	}
	p := profile.Principal()
	return &p, nil
}

// SetActive deactivates or reactivates an identity. Deactivation takes
// effect on the identity's next request.
func (s *AuthService[P, R, U]) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.store.SetActive(ctx, id, active); err != nil {
		return notFoundErr(err)
	}
	s.log.Info("identity active flag changed", "user_id", id, "active", active)
	return nil
}

// hashPassword reports bcrypt's 72 byte limit as a field error on field.
func hashPassword(field, password string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, validation.NewFieldError(field, fmt.Sprintf("%s must be at most %d bytes long", field, MaxPasswordBytes))
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

func (s *AuthService[P, R, U]) record(op, outcome string) {
	s.metrics.RecordAuth(s.cfg.Tenant, op, outcome)
}

// AdminAuthService and StudioAuthService are the two instantiations.
type (
	AdminAuthService  = AuthService[*model.AdminProfile, model.AdminRegistration, model.AdminProfileUpdate]
	StudioAuthService = AuthService[*model.StudioProfile, model.StudioRegistration, model.StudioProfileUpdate]
)

func NewAdminAuthService(repo *repository.AdminRepository, codec *middleware.TokenCodec, bcryptCost int, log *slog.Logger) (*AdminAuthService, error) {
	return NewAuthService[*model.AdminProfile, model.AdminRegistration, model.AdminProfileUpdate](repo, codec, TenantConfig{
		Tenant:     model.TenantAdmin,
		TTL:        middleware.AdminTokenTTL,
		BcryptCost: bcryptCost,
	}, log)
}

func NewStudioAuthService(repo *repository.StudioUserRepository, codec *middleware.TokenCodec, bcryptCost int, log *slog.Logger) (*StudioAuthService, error) {
	return NewAuthService[*model.StudioProfile, model.StudioRegistration, model.StudioProfileUpdate](repo, codec, TenantConfig{
		Tenant:     model.TenantStudio,
		TTL:        middleware.StudioTokenTTL,
		BcryptCost: bcryptCost,
	}, log)
}

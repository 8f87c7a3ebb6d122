package services

import (
	"context"
	"sync"
	"time"

	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/repository"

	"github.com/google/uuid"
)

type adminRow struct {
	profile model.AdminProfile
	hash    string
}

// fakeAdminStore is an in-memory CredentialStore for the admin tenant.
type fakeAdminStore struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*adminRow
	createErr error
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{rows: map[uuid.UUID]*adminRow{}}
}

func (f *fakeAdminStore) byEmail(email string) *adminRow {
	for _, r := range f.rows {
		if r.profile.Email == repository.NormalizeEmail(email) {
			return r
		}
	}
	return nil
}

func (f *fakeAdminStore) cred(r *adminRow) *model.Credential {
	return &model.Credential{ID: r.profile.ID, Email: r.profile.Email, PasswordHash: r.hash, IsActive: r.profile.IsActive}
}

func (f *fakeAdminStore) FindCredentialByEmail(_ context.Context, email string) (*model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := f.byEmail(email); r != nil {
		return f.cred(r), nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdminStore) FindCredentialByID(_ context.Context, id uuid.UUID) (*model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[id]; ok {
		return f.cred(r), nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdminStore) Create(_ context.Context, email, hash string, fields model.AdminRegistration) (*model.AdminProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.byEmail(email) != nil {
		return nil, repository.ErrDuplicate
	}
	now := time.Now()
	r := &adminRow{
		profile: model.AdminProfile{
			ID:        uuid.New(),
			Email:     repository.NormalizeEmail(email),
			Name:      fields.Name,
			Role:      model.RoleSuperAdmin,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		hash: hash,
	}
	f.rows[r.profile.ID] = r
	p := r.profile
	return &p, nil
}

func (f *fakeAdminStore) FindByID(_ context.Context, id uuid.UUID) (*model.AdminProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rows[id]; ok {
		p := r.profile
		return &p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdminStore) Update(_ context.Context, id uuid.UUID, u model.AdminProfileUpdate) (*model.AdminProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u.Name != nil {
		r.profile.Name = *u.Name
	}
	p := r.profile
	return &p, nil
}

func (f *fakeAdminStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.hash = hash
	return nil
}

func (f *fakeAdminStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.profile.IsActive = active
	return nil
}

func (f *fakeAdminStore) hashOf(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].hash
}

type recorded struct {
	tenant      model.Tenant
	op, outcome string
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recorded
}

func (r *fakeRecorder) RecordAuth(tenant model.Tenant, op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recorded{tenant, op, outcome})
}

type fakeVerificationStore struct {
	tokens map[string]model.EmailVerification
}

func newFakeVerificationStore() *fakeVerificationStore {
	return &fakeVerificationStore{tokens: map[string]model.EmailVerification{}}
}

func (f *fakeVerificationStore) Create(_ context.Context, id uuid.UUID, token string, exp time.Time) error {
	f.tokens[token] = model.EmailVerification{Token: token, StudioUserID: id, ExpiresAt: exp}
	return nil
}

func (f *fakeVerificationStore) GetStudioUserID(_ context.Context, token string, now time.Time) (uuid.UUID, error) {
	v, ok := f.tokens[token]
	if !ok || !v.ExpiresAt.After(now) {
		return uuid.Nil, repository.ErrNotFound
	}
	return v.StudioUserID, nil
}

func (f *fakeVerificationStore) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

type fakeVerifiedSetter struct {
	verified map[uuid.UUID]bool
}

func (f *fakeVerifiedSetter) SetEmailVerified(_ context.Context, id uuid.UUID) error {
	f.verified[id] = true
	return nil
}

type sentMail struct {
	to, link string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) SendVerificationEmail(_ context.Context, to, link string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, link})
	return nil
}

type fakeEmailValidator struct {
	err error
}

func (f fakeEmailValidator) Validate(context.Context, string) error { return f.err }

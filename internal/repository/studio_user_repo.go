package repository

import (
	"context"
	"fmt"

	"github.com/tankharsh/photocap/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const studioProfileColumns = `id, email, first_name, last_name, phone, date_of_birth, photography_type,
	event_types, budget, preferred_date, subscribe_newsletter, is_active, email_verified,
	created_at, updated_at`

type StudioUserRepository struct {
	DB DB
}

func NewStudioUserRepository(db DB) *StudioUserRepository {
	return &StudioUserRepository{DB: db}
}

func scanStudioUser(row pgx.Row) (*model.StudioProfile, error) {
	var s model.StudioProfile
	err := row.Scan(&s.ID, &s.Email, &s.FirstName, &s.LastName, &s.Phone, &s.DateOfBirth, &s.PhotographyType,
		&s.EventTypes, &s.Budget, &s.PreferredDate, &s.SubscribeNewsletter, &s.IsActive, &s.EmailVerified,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if s.EventTypes == nil {
		s.EventTypes = []string{}
	}
	return &s, nil
}

func (r *StudioUserRepository) FindCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var c model.Credential
	q := `SELECT id, email, password_hash, is_active FROM studio_users WHERE email=$1`
	if err := r.DB.QueryRow(ctx, q, NormalizeEmail(email)).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.IsActive); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *StudioUserRepository) FindCredentialByID(ctx context.Context, id uuid.UUID) (*model.Credential, error) {
	var c model.Credential
	q := `SELECT id, email, password_hash, is_active FROM studio_users WHERE id=$1`
	if err := r.DB.QueryRow(ctx, q, id).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.IsActive); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Create inserts a self-registered studio user. New accounts are active and
// unverified.
func (r *StudioUserRepository) Create(ctx context.Context, email, passwordHash string, f model.StudioRegistration) (*model.StudioProfile, error) {
	eventTypes := f.EventTypes
	if eventTypes == nil {
		eventTypes = []string{}
	}
	q := `INSERT INTO studio_users (id, email, password_hash, first_name, last_name, phone, date_of_birth,
			photography_type, event_types, budget, preferred_date, subscribe_newsletter)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + studioProfileColumns
	s, err := scanStudioUser(r.DB.QueryRow(ctx, q,
		uuid.New(), NormalizeEmail(email), passwordHash, f.FirstName, f.LastName, f.Phone, f.DateOfBirth,
		f.PhotographyType, eventTypes, f.Budget, f.PreferredDate, f.SubscribeNewsletter,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create studio user: %w", err)
	}
	return s, nil
}

func (r *StudioUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StudioProfile, error) {
	q := `SELECT ` + studioProfileColumns + ` FROM studio_users WHERE id=$1`
	return scanStudioUser(r.DB.QueryRow(ctx, q, id))
}

// Update applies a partial update; nil fields keep their stored value.
func (r *StudioUserRepository) Update(ctx context.Context, id uuid.UUID, f model.StudioProfileUpdate) (*model.StudioProfile, error) {
	q := `UPDATE studio_users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone = COALESCE($4, phone),
			date_of_birth = COALESCE($5, date_of_birth),
			photography_type = COALESCE($6, photography_type),
			event_types = COALESCE($7, event_types),
			budget = COALESCE($8, budget),
			preferred_date = COALESCE($9, preferred_date),
			subscribe_newsletter = COALESCE($10, subscribe_newsletter),
			updated_at = now()
		WHERE id=$1
		RETURNING ` + studioProfileColumns
	return scanStudioUser(r.DB.QueryRow(ctx, q, id,
		f.FirstName, f.LastName, f.Phone, f.DateOfBirth, f.PhotographyType,
		f.EventTypes, f.Budget, f.PreferredDate, f.SubscribeNewsletter,
	))
}

func (r *StudioUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE studio_users SET password_hash=$2, updated_at=now() WHERE id=$1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update studio password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StudioUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.DB.Exec(ctx, `UPDATE studio_users SET is_active=$2, updated_at=now() WHERE id=$1`, id, active)
	if err != nil {
		return fmt.Errorf("set studio user active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StudioUserRepository) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `UPDATE studio_users SET email_verified=TRUE, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("verify studio email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns studio users newest first (admin use).
func (r *StudioUserRepository) List(ctx context.Context, limit, offset int) ([]model.StudioProfile, error) {
	q := `SELECT ` + studioProfileColumns + ` FROM studio_users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list studio users: %w", err)
	}
	defer rows.Close()

	out := []model.StudioProfile{}
	for rows.Next() {
		s, err := scanStudioUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

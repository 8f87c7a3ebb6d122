package repository

import (
	"context"
	"fmt"

	"github.com/tankharsh/photocap/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// adminProfileColumns never includes password_hash.
const adminProfileColumns = `id, email, name, role, is_active, created_at, updated_at`

type AdminRepository struct {
	DB DB
}

func NewAdminRepository(db DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

func scanAdmin(row pgx.Row) (*model.AdminProfile, error) {
	var a model.AdminProfile
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AdminRepository) FindCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var c model.Credential
	q := `SELECT id, email, password_hash, is_active FROM admins WHERE email=$1`
	if err := r.DB.QueryRow(ctx, q, NormalizeEmail(email)).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.IsActive); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *AdminRepository) FindCredentialByID(ctx context.Context, id uuid.UUID) (*model.Credential, error) {
	var c model.Credential
	q := `SELECT id, email, password_hash, is_active FROM admins WHERE id=$1`
	if err := r.DB.QueryRow(ctx, q, id).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.IsActive); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Create inserts a new admin and returns its profile projection.
func (r *AdminRepository) Create(ctx context.Context, email, passwordHash string, f model.AdminRegistration) (*model.AdminProfile, error) {
	role := f.Role
	if role == "" {
		role = model.RoleSuperAdmin
	}
	q := `INSERT INTO admins (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + adminProfileColumns
	a, err := scanAdmin(r.DB.QueryRow(ctx, q, uuid.New(), NormalizeEmail(email), passwordHash, f.Name, role))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AdminProfile, error) {
	q := `SELECT ` + adminProfileColumns + ` FROM admins WHERE id=$1`
	return scanAdmin(r.DB.QueryRow(ctx, q, id))
}

// Update applies a partial update; email and password are not reachable here.
func (r *AdminRepository) Update(ctx context.Context, id uuid.UUID, f model.AdminProfileUpdate) (*model.AdminProfile, error) {
	q := `UPDATE admins SET name = COALESCE($2, name), updated_at = now()
		WHERE id=$1
		RETURNING ` + adminProfileColumns
	return scanAdmin(r.DB.QueryRow(ctx, q, id, f.Name))
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE admins SET password_hash=$2, updated_at=now() WHERE id=$1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AdminRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.DB.Exec(ctx, `UPDATE admins SET is_active=$2, updated_at=now() WHERE id=$1`, id, active)
	if err != nil {
		return fmt.Errorf("set admin active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

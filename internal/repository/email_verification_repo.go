package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EmailVerificationRepository struct {
	db DB
}

func NewEmailVerificationRepository(db DB) *EmailVerificationRepository {
	return &EmailVerificationRepository{db: db}
}

func (r *EmailVerificationRepository) Create(ctx context.Context, studioUserID uuid.UUID, token string, exp time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO email_verifications (token, studio_user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, studioUserID, exp)
	if err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}
	return nil
}

// GetStudioUserID resolves an unexpired token; expired or unknown tokens are
// ErrNotFound.
func (r *EmailVerificationRepository) GetStudioUserID(ctx context.Context, token string, now time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT studio_user_id FROM email_verifications
		WHERE token = $1 AND expires_at > $2
	`, token, now).Scan(&id)
	if err != nil {
		return uuid.Nil, notFound(err)
	}
	return id, nil
}

func (r *EmailVerificationRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM email_verifications WHERE token = $1`, token)
	return err
}

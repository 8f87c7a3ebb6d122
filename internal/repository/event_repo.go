package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tankharsh/photocap/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eventSelect = `SELECT e.id, e.user_id, e.client_id, e.title, e.description, e.event_type, e.event_date,
		e.event_location, e.duration, e.budget, e.client_name, e.client_email, e.client_phone, e.status,
		e.created_at, e.updated_at, c.id, c.name, c.email, c.phone
	FROM events e
	LEFT JOIN clients c ON c.id = e.client_id`

type EventRepository struct {
	DB DB
}

func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{DB: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e                                    model.Event
		clientID                             *uuid.UUID
		clientName, clientEmail, clientPhone *string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.ClientID, &e.Title, &e.Description, &e.EventType, &e.EventDate,
		&e.EventLocation, &e.Duration, &e.Budget, &e.ClientName, &e.ClientEmail, &e.ClientPhone, &e.Status,
		&e.CreatedAt, &e.UpdatedAt, &clientID, &clientName, &clientEmail, &clientPhone)
	if err != nil {
		return nil, notFound(err)
	}
	if clientID != nil && clientName != nil && clientEmail != nil {
		e.Client = &model.ClientBrief{ID: *clientID, Name: *clientName, Email: *clientEmail, Phone: clientPhone}
	}
	return &e, nil
}

// ListByUser returns the studio user's events, newest first.
func (r *EventRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Event, error) {
	rows, err := r.DB.Query(ctx, eventSelect+` WHERE e.user_id=$1 ORDER BY e.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// FindByID only matches events owned by userID.
func (r *EventRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Event, error) {
	return scanEvent(r.DB.QueryRow(ctx, eventSelect+` WHERE e.id=$1 AND e.user_id=$2`, id, userID))
}

// Create upserts the studio's client by email and inserts the event in one
// transaction. A new client starts at one event; an existing one is
// incremented.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	e.ClientEmail = NormalizeEmail(e.ClientEmail)

	var client model.ClientBrief
	err = tx.QueryRow(ctx, `
		INSERT INTO clients (id, user_id, name, email, phone, total_events, total_spent)
		VALUES ($1, $2, $3, $4, $5, 1, 0)
		ON CONFLICT (user_id, email) DO UPDATE
		SET total_events = clients.total_events + 1, updated_at = now()
		RETURNING id, name, email, phone
	`, uuid.New(), e.UserID, e.ClientName, e.ClientEmail, e.ClientPhone).
		Scan(&client.ID, &client.Name, &client.Email, &client.Phone)
	if err != nil {
		return nil, fmt.Errorf("upsert client: %w", err)
	}

	if e.Status == "" {
		e.Status = model.EventPlanning
	}
	e.ID = uuid.New()
	e.ClientID = &client.ID
	err = tx.QueryRow(ctx, `
		INSERT INTO events (id, user_id, client_id, title, description, event_type, event_date,
			event_location, duration, budget, client_name, client_email, client_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`, e.ID, e.UserID, e.ClientID, e.Title, e.Description, e.EventType, e.EventDate,
		e.EventLocation, e.Duration, e.Budget, e.ClientName, e.ClientEmail, e.ClientPhone, e.Status).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit event: %w", err)
	}
	e.Client = &client
	return e, nil
}

// Update applies a partial update to an event owned by userID.
func (r *EventRepository) Update(ctx context.Context, userID, id uuid.UUID, f model.EventUpdate) (*model.Event, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE events SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			event_type = COALESCE($5, event_type),
			event_date = COALESCE($6, event_date),
			event_location = COALESCE($7, event_location),
			duration = COALESCE($8, duration),
			budget = COALESCE($9, budget),
			client_name = COALESCE($10, client_name),
			client_phone = COALESCE($11, client_phone),
			status = COALESCE($12, status),
			updated_at = now()
		WHERE id=$1 AND user_id=$2
	`, id, userID, f.Title, f.Description, f.EventType, f.EventDate, f.EventLocation, f.Duration,
		f.Budget, f.ClientName, f.ClientPhone, f.Status)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, userID, id)
}

// Delete removes an event owned by userID and decrements its client's event
// count, never below zero.
func (r *EventRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var clientEmail string
	err = tx.QueryRow(ctx, `DELETE FROM events WHERE id=$1 AND user_id=$2 RETURNING client_email`, id, userID).
		Scan(&clientEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE clients SET total_events = total_events - 1, updated_at = now()
		WHERE user_id=$1 AND email=$2 AND total_events > 0
	`, userID, clientEmail)
	if err != nil {
		return fmt.Errorf("decrement client events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

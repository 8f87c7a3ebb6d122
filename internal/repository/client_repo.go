package repository

import (
	"context"
	"fmt"

	"github.com/tankharsh/photocap/internal/model"

	"github.com/google/uuid"
)

// RecentEventsPerClient caps the events embedded in a client listing.
const RecentEventsPerClient = 5

type ClientRepository struct {
	DB DB
}

func NewClientRepository(db DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

// ListByUser returns the studio user's clients, newest first, each with its
// most recent events.
func (r *ClientRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Client, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, name, email, phone, total_events, total_spent, created_at, updated_at
		FROM clients WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := []model.Client{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.TotalEvents, &c.TotalSpent, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Events = []model.EventBrief{}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	evRows, err := r.DB.Query(ctx, `
		SELECT c.id, e.id, e.title, e.event_date, e.status
		FROM clients c
		CROSS JOIN LATERAL (
			SELECT id, title, event_date, status FROM events
			WHERE client_id = c.id
			ORDER BY event_date DESC
			LIMIT $2
		) e
		WHERE c.user_id=$1
		ORDER BY c.id, e.event_date DESC
	`, userID, RecentEventsPerClient)
	if err != nil {
		return nil, fmt.Errorf("list client events: %w", err)
	}
	defer evRows.Close()

	for evRows.Next() {
		var (
			clientID uuid.UUID
			ev       model.EventBrief
		)
		if err := evRows.Scan(&clientID, &ev.ID, &ev.Title, &ev.EventDate, &ev.Status); err != nil {
			return nil, err
		}
		if i, ok := index[clientID]; ok {
			out[i].Events = append(out[i].Events, ev)
		}
	}
	return out, evRows.Err()
}

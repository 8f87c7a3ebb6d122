package services

import (
	"context"
	"errors"

	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/repository"

	"github.com/google/uuid"
)

type EventStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Event, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Event, error)
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	Update(ctx context.Context, userID, id uuid.UUID, f model.EventUpdate) (*model.Event, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// EventService scopes every event operation to the calling studio user.
type EventService struct {
	Events EventStore
}

func NewEventService(events EventStore) *EventService {
	return &EventService{Events: events}
}

func (s *EventService) List(ctx context.Context, userID uuid.UUID) ([]model.Event, error) {
	return s.Events.ListByUser(ctx, userID)
}

func (s *EventService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Event, error) {
	e, err := s.Events.FindByID(ctx, userID, id)
	return e, notFoundErr(err)
}

func (s *EventService) Create(ctx context.Context, userID uuid.UUID, e *model.Event) (*model.Event, error) {
	e.UserID = userID
	if e.Status == "" {
		e.Status = model.EventPlanning
	}
	return s.Events.Create(ctx, e)
}

func (s *EventService) Update(ctx context.Context, userID, id uuid.UUID, f model.EventUpdate) (*model.Event, error) {
	e, err := s.Events.Update(ctx, userID, id, f)
	return e, notFoundErr(err)
}

func (s *EventService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return notFoundErr(s.Events.Delete(ctx, userID, id))
}

func notFoundErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

package services

import (
	"context"

	"github.com/tankharsh/photocap/internal/model"

	"github.com/google/uuid"
)

type ClientLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Client, error)
}

type ClientService struct {
	Clients ClientLister
}

func NewClientService(clients ClientLister) *ClientService {
	return &ClientService{Clients: clients}
}

// List returns the studio user's clients, newest first.
func (s *ClientService) List(ctx context.Context, userID uuid.UUID) ([]model.Client, error) {
	return s.Clients.ListByUser(ctx, userID)
}

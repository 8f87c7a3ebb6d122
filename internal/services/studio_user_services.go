package services

import (
	"context"

	"github.com/tankharsh/photocap/internal/model"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type StudioUserLister interface {
	List(ctx context.Context, limit, offset int) ([]model.StudioProfile, error)
}

// StudioUserService is the admin-side directory of studio accounts.
// Activation is delegated to the studio AuthService.
type StudioUserService struct {
	Users StudioUserLister
	Auth  *StudioAuthService
}

func NewStudioUserService(users StudioUserLister, auth *StudioAuthService) *StudioUserService {
	return &StudioUserService{Users: users, Auth: auth}
}

func (s *StudioUserService) List(ctx context.Context, limit, offset int) ([]model.StudioProfile, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)
	return s.Users.List(ctx, limit, offset)
}

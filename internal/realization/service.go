package realization

import (
	"context"
	"log/slog"

	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
)

// ListFilter narrows the realization listing; zero values mean no filter.
type ListFilter struct {
	BranchID int64
	Month    int
	Year     int
}

// Repository defines the data access methods for realization rollups.
type Repository interface {
	GetByID(id int64) (*Realization, error)
	List(filter ListFilter, limit, offset int) ([]*Realization, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns monthly rollups scoped to the actor: admins see their branch,
// superadmins see everything. The rollups are written by the synchronizer;
// this service only reads them.
func (s *Service) List(ctx context.Context, actor *auth.Actor, filter ListFilter, limit, offset int) ([]*Realization, error) {
	if !actor.Role.IsPrivileged() {
		return nil, internal.ErrRoleForbidden
	}
	if actor.Role == auth.RoleAdmin && actor.BranchID != nil {
		filter.BranchID = *actor.BranchID
	}
	rollups, err := s.repo.List(filter, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list realizations", err)
	}
	return rollups, nil
}

func (s *Service) GetByID(ctx context.Context, actor *auth.Actor, id int64) (*Realization, error) {
	if !actor.Role.IsPrivileged() {
		return nil, internal.ErrRoleForbidden
	}
	r, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRealizationNotFound
	}
	if actor.Role == auth.RoleAdmin && actor.BranchID != nil && r.BranchID != *actor.BranchID {
		return nil, internal.ErrRoleForbidden
	}
	return r, nil
}

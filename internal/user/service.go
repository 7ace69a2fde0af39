package user

import (
	"context"
	"log/slog"

	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
)

// Repository defines the data access methods for reference data.
type Repository interface {
	CreateUser(u *User, passwordHash string) error
	GetUserByID(id int64) (*User, error)
	ListUsers(limit, offset int) ([]*User, error)
	UpdateUser(u *User) error

	CreateBranch(b *Branch) error
	ListBranches() ([]*Branch, error)
	ListDivisions(branchID int64) ([]*Division, error)
	ListSubsidiaries() ([]*Subsidiary, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

// CreateUser registers a new account. Only superadmins manage accounts.
func (s *Service) CreateUser(ctx context.Context, actor *auth.Actor, dto CreateUserDTO) (*User, error) {
	if actor.Role != auth.RoleSuperadmin {
		return nil, internal.ErrRoleForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Email:      dto.Email,
		Name:       dto.Name,
		Role:       dto.Role,
		BranchID:   dto.BranchID,
		DivisionID: dto.DivisionID,
		IsActive:   true,
	}
	if err := s.repo.CreateUser(u, hash); err != nil {
		s.logger.ErrorContext(ctx, "failed to create user", slog.String("error", err.Error()))
		return nil, internal.NewInternalError("failed to create user", err)
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, actor *auth.Actor, id int64) (*User, error) {
	if actor.Role != auth.RoleSuperadmin && actor.UserID != id {
		return nil, internal.ErrRoleForbidden
	}
	u, err := s.repo.GetUserByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, actor *auth.Actor, limit, offset int) ([]*User, error) {
	if actor.Role != auth.RoleSuperadmin {
		return nil, internal.ErrRoleForbidden
	}
	users, err := s.repo.ListUsers(limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return users, nil
}

// UpdateUser applies account edits, including role changes and deactivation.
func (s *Service) UpdateUser(ctx context.Context, actor *auth.Actor, id int64, dto UpdateUserDTO) (*User, error) {
	if actor.Role != auth.RoleSuperadmin {
		return nil, internal.ErrRoleForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Role != nil {
		u.Role = *dto.Role
	}
	if dto.BranchID != nil {
		u.BranchID = dto.BranchID
	}
	if dto.DivisionID != nil {
		u.DivisionID = dto.DivisionID
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.UpdateUser(u); err != nil {
		return nil, internal.NewInternalError("failed to update user", err)
	}
	return u, nil
}

// CreateBranch adds a branch; superadmin only.
func (s *Service) CreateBranch(ctx context.Context, actor *auth.Actor, dto CreateBranchDTO) (*Branch, error) {
	if actor.Role != auth.RoleSuperadmin {
		return nil, internal.ErrRoleForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	b := &Branch{Name: dto.Name, Address: dto.Address, SubsidiaryID: dto.SubsidiaryID}
	if err := s.repo.CreateBranch(b); err != nil {
		return nil, internal.NewInternalError("failed to create branch", err)
	}
	return b, nil
}

// ListBranches is open to any authenticated user; proposals reference them.
func (s *Service) ListBranches(ctx context.Context) ([]*Branch, error) {
	branches, err := s.repo.ListBranches()
	if err != nil {
		return nil, internal.NewInternalError("failed to list branches", err)
	}
	return branches, nil
}

func (s *Service) ListDivisions(ctx context.Context, branchID int64) ([]*Division, error) {
	divisions, err := s.repo.ListDivisions(branchID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list divisions", err)
	}
	return divisions, nil
}

func (s *Service) ListSubsidiaries(ctx context.Context) ([]*Subsidiary, error) {
	subsidiaries, err := s.repo.ListSubsidiaries()
	if err != nil {
		return nil, internal.NewInternalError("failed to list subsidiaries", err)
	}
	return subsidiaries, nil
}

package draft

import (
	"context"
	"log/slog"

	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/events"
)

// Repository defines the data access methods for Draft TNA records.
type Repository interface {
	Create(d *Draft) error
	GetByID(id int64) (*Draft, error)
	List(filter ListDraftsFilter, limit, offset int) ([]*Draft, error)
	Update(d *Draft) error
	Delete(id int64) error
}

// Notifier announces a submitted draft to the privileged audience.
type Notifier interface {
	DraftSubmitted(ctx context.Context, d *Draft) error
}

// EventPublisher is the subset of the event bus the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	bus      EventPublisher
	logger   *slog.Logger
}

// NewService creates the Draft TNA service. bus may be nil.
func NewService(repo Repository, notifier Notifier, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		bus:      bus,
		logger:   logger,
	}
}

// Create registers a manual planning entry. Only admins and superadmins plan
// trainings ahead of proposals.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateDraftDTO) (*Draft, error) {
	if !actor.Role.IsPrivileged() {
		return nil, internal.ErrRoleForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d := &Draft{
		Year:             dto.Year,
		BranchID:         dto.BranchID,
		DivisionID:       dto.DivisionID,
		Description:      dto.Description,
		ScheduledDate:    dto.ScheduledDate,
		ParticipantCount: dto.ParticipantCount,
		DurationDays:     dto.DurationDays,
		Level:            dto.Level,
		BaseCost:         dto.BaseCost,
		TransportCost:    dto.TransportCost,
		LodgingCost:      dto.LodgingCost,
		PerDiemCost:      dto.PerDiemCost,
		TotalCost:        dto.BaseCost + dto.TransportCost + dto.LodgingCost + dto.PerDiemCost,
		Status:           StatusDraft,
		CreatedBy:        actor.UserID,
	}

	if err := s.repo.Create(d); err != nil {
		s.logger.ErrorContext(ctx, "failed to create draft", slog.String("error", err.Error()))
		return nil, internal.NewInternalError("failed to create draft", err)
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, actor *auth.Actor, id int64) (*Draft, error) {
	if !actor.Role.IsPrivileged() {
		return nil, internal.ErrRoleForbidden
	}
	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrDraftNotFound
	}
	if actor.Role == auth.RoleAdmin && actor.BranchID != nil && d.BranchID != *actor.BranchID {
		return nil, internal.ErrRoleForbidden
	}
	return d, nil
}

// List returns drafts scoped to the actor: admins see their branch,
// superadmins see everything.
func (s *Service) List(ctx context.Context, actor *auth.Actor, filter ListDraftsFilter, limit, offset int) ([]*Draft, error) {
	if !actor.Role.IsPrivileged() {
		return nil, internal.ErrRoleForbidden
	}
	if actor.Role == auth.RoleAdmin && actor.BranchID != nil {
		filter.BranchID = *actor.BranchID
	}
	drafts, err := s.repo.List(filter, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list drafts", err)
	}
	return drafts, nil
}

// Update applies content edits. Approved drafts are frozen.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateDraftDTO) (*Draft, error) {
	if !actor.Role.IsPrivileged() {
		return nil, internal.ErrRoleForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if d.Status == StatusApproved {
		return nil, internal.NewValidationError("approved drafts can no longer be edited", internal.ErrCodeInvalidStatus)
	}

	if dto.Description != nil {
		d.Description = *dto.Description
	}
	if dto.ScheduledDate != nil {
		d.ScheduledDate = dto.ScheduledDate
	}
	if dto.ParticipantCount != nil {
		d.ParticipantCount = *dto.ParticipantCount
	}
	if dto.DurationDays != nil {
		d.DurationDays = *dto.DurationDays
	}
	if dto.Level != nil {
		d.Level = *dto.Level
	}
	if dto.BaseCost != nil {
		d.BaseCost = *dto.BaseCost
	}
	if dto.TransportCost != nil {
		d.TransportCost = *dto.TransportCost
	}
	if dto.LodgingCost != nil {
		d.LodgingCost = *dto.LodgingCost
	}
	if dto.PerDiemCost != nil {
		d.PerDiemCost = *dto.PerDiemCost
	}
	d.TotalCost = d.BaseCost + d.TransportCost + d.LodgingCost + d.PerDiemCost
	d.UpdatedBy = &actor.UserID

	if err := s.repo.Update(d); err != nil {
		return nil, internal.NewInternalError("failed to update draft", err)
	}
	return d, nil
}

// UpdateStatus moves a draft along DRAFT -> SUBMITTED -> APPROVED. Submission
// is open to any privileged role and fans out a notification; approval is
// reserved for superadmins.
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.Actor, id int64, dto UpdateDraftStatusDTO) (*Draft, error) {
	if !actor.Role.IsPrivileged() {
		return nil, internal.ErrRoleForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	switch dto.Status {
	case StatusSubmitted:
		if !d.CanSubmit() {
			return nil, internal.NewInvalidTransitionError(d.Status, dto.Status)
		}
	case StatusApproved:
		if actor.Role != auth.RoleSuperadmin {
			return nil, internal.ErrRoleForbidden
		}
		if !d.CanApprove() {
			return nil, internal.NewInvalidTransitionError(d.Status, dto.Status)
		}
	default:
		return nil, internal.NewInvalidTransitionError(d.Status, dto.Status)
	}

	d.Status = dto.Status
	d.UpdatedBy = &actor.UserID
	if err := s.repo.Update(d); err != nil {
		return nil, internal.NewInternalError("failed to update draft status", err)
	}

	if dto.Status == StatusSubmitted {
		if s.bus != nil {
			event := events.NewDraftSubmittedEvent(d.ID, d.BranchID, actor.UserID)
			if err := s.bus.Publish(ctx, event); err != nil {
				s.logger.WarnContext(ctx, "failed to publish draft submitted event",
					slog.Int64("draft_id", d.ID),
					slog.String("error", err.Error()))
			}
		}
		if s.notifier != nil {
			if err := s.notifier.DraftSubmitted(ctx, d); err != nil {
				s.logger.ErrorContext(ctx, "draft submission notification failed",
					slog.Int64("draft_id", d.ID),
					slog.String("error", err.Error()))
			}
		}
	}

	return d, nil
}

// Delete removes a draft. Admins may only discard drafts that have not been
// submitted; superadmins may delete any.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if !actor.Role.IsPrivileged() {
		return internal.ErrRoleForbidden
	}
	d, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}
	if actor.Role == auth.RoleAdmin && d.Status != StatusDraft {
		return internal.ErrRoleForbidden
	}
	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete draft", err)
	}
	return nil
}

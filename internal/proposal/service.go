package proposal

import (
	"context"
	"errors"
	"log/slog"

	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/events"
)

// errImplementationUnchanged signals that a concurrent call already committed
// the requested implementation sub-state; the update is a no-op.
var errImplementationUnchanged = errors.New("implementation status unchanged")

// Repository defines the data access methods for proposals.
type Repository interface {
	Create(p *Proposal) error
	GetByID(id int64) (*Proposal, error)
	GetByUserID(userID int64, limit, offset int) ([]*Proposal, error)
	GetByBranch(branchID int64, limit, offset int) ([]*Proposal, error)
	GetAll(limit, offset int) ([]*Proposal, error)
	// UpdateTx loads the proposal with items inside a transaction, applies
	// mutate, and persists the result. The write is consistent with the read
	// used to validate the transition.
	UpdateTx(id int64, mutate func(p *Proposal) error) (*Proposal, error)
	ReplaceItems(proposalID int64, items []Item) error
	Delete(id int64) error
}

// Notifier fans notifications out to the audience of each transition. All
// calls are best-effort: failures are logged by the service and never abort
// or roll back the transition that triggered them.
type Notifier interface {
	ProposalSubmitted(ctx context.Context, p *Proposal, revision bool) error
	AdminApproved(ctx context.Context, p *Proposal) error
	SuperadminApproved(ctx context.Context, p *Proposal) error
	ConfirmedToOwner(ctx context.Context, p *Proposal) error
	RejectedByAdmin(ctx context.Context, p *Proposal, reason string) error
	RejectedBySuperadmin(ctx context.Context, p *Proposal, reason string) error
}

// SyncResult reports what the derived-record synchronizer did for a proposal.
type SyncResult struct {
	Created  bool   `json:"created"`
	BranchID int64  `json:"branch_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Syncer creates/updates the derived Draft TNA and realization records for an
// implemented proposal.
type Syncer interface {
	Sync(ctx context.Context, p *Proposal) (SyncResult, error)
}

// EventPublisher is the subset of the event bus the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles proposal workflow business logic
type Service struct {
	repo     Repository
	notifier Notifier
	syncer   Syncer
	bus      EventPublisher
	logger   *slog.Logger
}

// NewService creates a new proposal service. bus may be nil.
func NewService(repo Repository, notifier Notifier, syncer Syncer, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		syncer:   syncer,
		bus:      bus,
		logger:   logger,
	}
}

// Submit creates a proposal for the actor. Status is forced to MENUNGGU and
// branch/division are inherited from the submitter, whatever the client sent.
func (s *Service) Submit(ctx context.Context, actor *auth.Actor, dto CreateProposalDTO) (*Proposal, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("proposal validation failed", "error", err, "user_id", actor.UserID)
		return nil, err
	}

	p := &Proposal{
		UserID:           actor.UserID,
		BranchID:         actor.BranchID,
		DivisionID:       actor.DivisionID,
		Description:      dto.Description,
		ScheduledDate:    dto.ScheduledDate,
		ParticipantCount: dto.ParticipantCount,
		DurationDays:     dto.DurationDays,
		Level:            dto.Level,
		BaseCost:         dto.BaseCost,
		TransportCost:    dto.TransportCost,
		LodgingCost:      dto.LodgingCost,
		PerDiemCost:      dto.PerDiemCost,
		Status:           StatusMenunggu,
		Items:            itemsFromDTO(dto.Items),
	}
	p.RecalculateTotals()

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create proposal", "error", err, "user_id", actor.UserID)
		return nil, internal.NewInternalError("failed to create proposal", err)
	}

	s.logger.Info("proposal submitted",
		"proposal_id", p.ID,
		"user_id", actor.UserID,
		"total_cost", p.TotalCost,
		"items", len(p.Items))

	s.notify(ctx, "proposal submitted", func() error {
		return s.notifier.ProposalSubmitted(ctx, p, false)
	})

	return p, nil
}

// GetByID retrieves a proposal with access control: owners see their own,
// admins see their branch, superadmins see everything.
func (s *Service) GetByID(actor *auth.Actor, id int64) (*Proposal, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrProposalNotFound
	}

	if !s.canView(actor, p) {
		s.logger.Warn("unauthorized access to proposal", "proposal_id", id, "user_id", actor.UserID)
		return nil, internal.ErrNotProposalOwner
	}

	return p, nil
}

// List returns proposals scoped by role.
func (s *Service) List(actor *auth.Actor, limit, offset int) ([]*Proposal, error) {
	switch actor.Role {
	case auth.RoleSuperadmin:
		return s.repo.GetAll(limit, offset)
	case auth.RoleAdmin:
		if actor.BranchID == nil {
			return s.repo.GetAll(limit, offset)
		}
		return s.repo.GetByBranch(*actor.BranchID, limit, offset)
	default:
		return s.repo.GetByUserID(actor.UserID, limit, offset)
	}
}

// UpdateStatus runs one approval-chain transition. Core validation failures
// (role, transition table, missing rejection reason) abort with no state
// change; once the new status is committed, notification fan-out runs
// best-effort and cannot undo it.
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.Actor, proposalID int64, dto UpdateStatusDTO) (*Proposal, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(proposalID)
	if err != nil {
		return nil, internal.ErrProposalNotFound
	}

	effect, terr := ResolveTransition(actor.Role, current.Status, dto.Status)
	if terr != nil {
		s.logger.Warn("status transition rejected",
			"proposal_id", proposalID,
			"actor_role", string(actor.Role),
			"current", current.Status,
			"requested", dto.Status,
			"error", terr)
		return nil, terr
	}

	if effect.IsRejection() && dto.Reason == "" {
		return nil, internal.ErrReasonRequired
	}

	fromStatus := current.Status

	updated, err := s.repo.UpdateTx(proposalID, func(p *Proposal) error {
		// revalidate against the row read inside the transaction
		if _, err := ResolveTransition(actor.Role, p.Status, dto.Status); err != nil {
			return err
		}

		p.Status = dto.Status
		if effect.IsRejection() {
			reason := dto.Reason
			p.RejectionReason = &reason
		} else {
			p.RejectionReason = nil
		}

		// once the admin confirms the superadmin's approval back to the
		// owner, the implementation sub-state becomes meaningful
		if effect == EffectConfirmToOwner && p.ImplementationStatus == nil {
			pending := ImplementationPending
			p.ImplementationStatus = &pending
		}

		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to update proposal status", "error", err, "proposal_id", proposalID)
		return nil, internal.NewInternalError("failed to update proposal status", err)
	}

	s.logger.Info("proposal status updated",
		"proposal_id", proposalID,
		"from", fromStatus,
		"to", updated.Status,
		"actor_id", actor.UserID,
		"actor_role", string(actor.Role))

	s.publishEvent(ctx, events.NewProposalStatusChangedEvent(
		updated.ID, updated.UserID, fromStatus, updated.Status, actor.UserID, string(actor.Role)))

	switch effect {
	case EffectForwardToSuperadmin:
		s.notify(ctx, "admin approval", func() error {
			return s.notifier.AdminApproved(ctx, updated)
		})
	case EffectSuperadminApprove:
		s.notify(ctx, "superadmin approval", func() error {
			return s.notifier.SuperadminApproved(ctx, updated)
		})
	case EffectConfirmToOwner:
		s.notify(ctx, "confirmation to owner", func() error {
			return s.notifier.ConfirmedToOwner(ctx, updated)
		})
	case EffectRejectByAdmin:
		s.notify(ctx, "admin rejection", func() error {
			return s.notifier.RejectedByAdmin(ctx, updated, dto.Reason)
		})
	case EffectRejectBySuperadmin:
		s.notify(ctx, "superadmin rejection", func() error {
			return s.notifier.RejectedBySuperadmin(ctx, updated, dto.Reason)
		})
	}

	return updated, nil
}

// UpdateImplementation moves the one-way implementation sub-state. Repeating
// the current value is a no-op and never re-triggers synchronization; only
// the forward edge into SUDAH_IMPLEMENTASI invokes the synchronizer.
func (s *Service) UpdateImplementation(ctx context.Context, actor *auth.Actor, proposalID int64, dto UpdateImplementationDTO) (*Proposal, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(proposalID)
	if err != nil {
		return nil, internal.ErrProposalNotFound
	}

	if current.UserID != actor.UserID && !actor.Role.IsPrivileged() {
		return nil, internal.ErrNotProposalOwner
	}

	if !current.IsApproved() {
		return nil, internal.NewValidationError(
			"implementation status can only be set on an approved proposal",
			internal.ErrCodeInvalidStatus)
	}

	prev := ""
	if current.ImplementationStatus != nil {
		prev = *current.ImplementationStatus
	}

	// idempotent re-entry
	if prev == dto.ImplementationStatus {
		return current, nil
	}

	if prev == ImplementationDone {
		return nil, internal.NewValidationError(
			"implementation status cannot be reverted",
			internal.ErrCodeInvalidStatus)
	}

	updated, err := s.repo.UpdateTx(proposalID, func(p *Proposal) error {
		// revalidate against the row read inside the transaction; a concurrent
		// call may have committed the same edge between our read and here
		txPrev := ""
		if p.ImplementationStatus != nil {
			txPrev = *p.ImplementationStatus
		}
		if txPrev == dto.ImplementationStatus {
			return errImplementationUnchanged
		}
		if txPrev == ImplementationDone {
			return internal.NewValidationError(
				"implementation status cannot be reverted",
				internal.ErrCodeInvalidStatus)
		}

		status := dto.ImplementationStatus
		p.ImplementationStatus = &status
		if dto.ImplementationStatus == ImplementationDone && dto.Evaluation != "" {
			eval := dto.Evaluation
			p.RealizationEvaluation = &eval
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errImplementationUnchanged) {
			refreshed, gerr := s.repo.GetByID(proposalID)
			if gerr != nil {
				return nil, internal.ErrProposalNotFound
			}
			return refreshed, nil
		}
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to update implementation status", "error", err, "proposal_id", proposalID)
		return nil, internal.NewInternalError("failed to update implementation status", err)
	}

	if dto.ImplementationStatus != ImplementationDone {
		return updated, nil
	}

	// forward edge only: run the synchronizer with the fully loaded proposal.
	// A sync failure is logged and swallowed; the implementation status has
	// already committed.
	result, serr := s.syncer.Sync(ctx, updated)
	if serr != nil {
		s.logger.Error("derived-record sync failed",
			"proposal_id", updated.ID,
			"error", serr)
	} else if result.Reason != "" {
		s.logger.Warn("derived-record sync skipped",
			"proposal_id", updated.ID,
			"reason", result.Reason)
	} else {
		s.logger.Info("derived-record sync complete",
			"proposal_id", updated.ID,
			"branch_id", result.BranchID,
			"draft_created", result.Created)
	}

	s.publishEvent(ctx, events.NewProposalImplementedEvent(
		updated.ID, updated.UserID, result.BranchID, result.Created))

	return updated, nil
}

// Update edits proposal content while the owner may still change it. Editing
// a DITOLAK proposal re-submits it: status resets to MENUNGGU, the rejection
// reason clears, the revision flag and original-proposal chain are set, and
// both branch admins and superadmins are told a revision arrived.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, proposalID int64, dto UpdateProposalDTO) (*Proposal, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(proposalID)
	if err != nil {
		return nil, internal.ErrProposalNotFound
	}

	if current.UserID != actor.UserID {
		return nil, internal.ErrNotProposalOwner
	}

	if !current.IsEditable() {
		return nil, internal.ErrProposalNotEditable
	}

	wasRejected := current.Status == StatusDitolak

	updated, err := s.repo.UpdateTx(proposalID, func(p *Proposal) error {
		p.Description = dto.Description
		p.ScheduledDate = dto.ScheduledDate
		p.ParticipantCount = dto.ParticipantCount
		p.DurationDays = dto.DurationDays
		p.Level = dto.Level
		p.BaseCost = dto.BaseCost
		p.TransportCost = dto.TransportCost
		p.LodgingCost = dto.LodgingCost
		p.PerDiemCost = dto.PerDiemCost
		p.Items = itemsFromDTO(dto.Items)
		for i := range p.Items {
			p.Items[i].ProposalID = p.ID
		}
		p.RecalculateTotals()

		if p.Status == StatusDitolak {
			p.Status = StatusMenunggu
			p.RejectionReason = nil
			p.IsRevision = true
			if p.OriginalProposalID == nil {
				id := p.ID
				p.OriginalProposalID = &id
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("failed to update proposal", "error", err, "proposal_id", proposalID)
		return nil, internal.NewInternalError("failed to update proposal", err)
	}

	if wasRejected {
		s.logger.Info("rejected proposal resubmitted as revision",
			"proposal_id", updated.ID,
			"original_proposal_id", updated.OriginalProposalID)
		s.notify(ctx, "revision submitted", func() error {
			return s.notifier.ProposalSubmitted(ctx, updated, true)
		})
	}

	return updated, nil
}

// Delete removes a proposal: the owner while it is editable, or any
// privileged role.
func (s *Service) Delete(actor *auth.Actor, proposalID int64) error {
	current, err := s.repo.GetByID(proposalID)
	if err != nil {
		return internal.ErrProposalNotFound
	}

	if actor.Role.IsPrivileged() {
		return s.repo.Delete(proposalID)
	}

	if current.UserID != actor.UserID {
		return internal.ErrNotProposalOwner
	}
	if !current.IsEditable() {
		return internal.ErrProposalNotEditable
	}

	return s.repo.Delete(proposalID)
}

func (s *Service) canView(actor *auth.Actor, p *Proposal) bool {
	switch actor.Role {
	case auth.RoleSuperadmin:
		return true
	case auth.RoleAdmin:
		if actor.BranchID == nil || p.BranchID == nil {
			return true
		}
		return *actor.BranchID == *p.BranchID
	default:
		return p.UserID == actor.UserID
	}
}

// notify runs one fan-out call under the swallow policy.
func (s *Service) notify(ctx context.Context, what string, fn func() error) {
	if s.notifier == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Error("notification fan-out failed", "for", what, "error", err)
	}
}

func (s *Service) publishEvent(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

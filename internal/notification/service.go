package notification

import (
	"context"
	"fmt"
	"log/slog"

	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/internal/draft"
	"github.com/frahmantamala/training-management/internal/proposal"
)

// Repository defines the data access methods for notifications.
type Repository interface {
	Create(n *Notification) error
	GetByUserID(userID int64, limit, offset int) ([]*Notification, error)
	GetByID(id int64) (*Notification, error)
	CountUnread(userID int64) (int64, error)
	MarkRead(id int64) error
	MarkAllRead(userID int64) error
	Delete(id int64) error
}

// UserDirectory resolves the recipient sets for each fan-out rule.
type UserDirectory interface {
	AdminsForBranch(branchID int64) ([]Recipient, error)
	Superadmins() ([]Recipient, error)
	AllPrivileged() ([]Recipient, error)
	UserByID(userID int64) (*Recipient, error)
}

// EventPublisher is the subset of the event bus the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      Repository
	directory UserDirectory
	bus       EventPublisher
	logger    *slog.Logger
}

// NewService creates the notification fan-out service. bus may be nil.
func NewService(repo Repository, directory UserDirectory, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		bus:       bus,
		logger:    logger,
	}
}

// ProposalSubmitted notifies the admins of the proposal's branch. A revision
// additionally alerts superadmins, since the rejected proposal may already
// have passed their desk.
func (s *Service) ProposalSubmitted(ctx context.Context, p *proposal.Proposal, revision bool) error {
	recipients, err := s.branchAdmins(p)
	if err != nil {
		return err
	}

	title := "New training proposal"
	body := fmt.Sprintf("%q is waiting for your review.", p.Description)
	if revision {
		title = "Revised training proposal"
		body = fmt.Sprintf("%q was revised after rejection and is waiting for your review.", p.Description)

		superadmins, err := s.directory.Superadmins()
		if err != nil {
			return fmt.Errorf("resolve superadmins: %w", err)
		}
		recipients = mergeRecipients(recipients, superadmins)
	}

	return s.fanOut(ctx, recipients, TypeProposalSubmitted, title, body, &p.ID, nil)
}

// AdminApproved notifies all superadmins that a proposal awaits their approval.
func (s *Service) AdminApproved(ctx context.Context, p *proposal.Proposal) error {
	recipients, err := s.directory.Superadmins()
	if err != nil {
		return fmt.Errorf("resolve superadmins: %w", err)
	}
	title := "Proposal approved by admin"
	body := fmt.Sprintf("%q passed admin review and is waiting for your approval.", p.Description)
	return s.fanOut(ctx, recipients, TypeApproveAdmin, title, body, &p.ID, nil)
}

// SuperadminApproved notifies the branch admins so they can confirm the
// result back to the owner.
func (s *Service) SuperadminApproved(ctx context.Context, p *proposal.Proposal) error {
	recipients, err := s.branchAdmins(p)
	if err != nil {
		return err
	}
	title := "Proposal approved by superadmin"
	body := fmt.Sprintf("%q was approved by a superadmin. Confirm the result to the proposer.", p.Description)
	return s.fanOut(ctx, recipients, TypeApproveSuperadmin, title, body, &p.ID, nil)
}

// ConfirmedToOwner notifies the proposal owner that the approval is final.
func (s *Service) ConfirmedToOwner(ctx context.Context, p *proposal.Proposal) error {
	owner, err := s.owner(p)
	if err != nil {
		return err
	}
	title := "Training proposal approved"
	body := fmt.Sprintf("%q has been fully approved. You can start implementation.", p.Description)
	return s.fanOut(ctx, []Recipient{*owner}, TypeApproveAdmin, title, body, &p.ID, nil)
}

// RejectedByAdmin notifies the owner, including the stated reason.
func (s *Service) RejectedByAdmin(ctx context.Context, p *proposal.Proposal, reason string) error {
	owner, err := s.owner(p)
	if err != nil {
		return err
	}
	title := "Training proposal rejected"
	body := fmt.Sprintf("%q was rejected by an admin: %s", p.Description, reason)
	return s.fanOut(ctx, []Recipient{*owner}, TypeRejectAdmin, title, body, &p.ID, nil)
}

// RejectedBySuperadmin notifies the owner, including the stated reason.
func (s *Service) RejectedBySuperadmin(ctx context.Context, p *proposal.Proposal, reason string) error {
	owner, err := s.owner(p)
	if err != nil {
		return err
	}
	title := "Training proposal rejected"
	body := fmt.Sprintf("%q was rejected by a superadmin: %s", p.Description, reason)
	return s.fanOut(ctx, []Recipient{*owner}, TypeRejectSuperadmin, title, body, &p.ID, nil)
}

// DraftSubmitted announces a submitted Draft TNA to every admin and
// superadmin in the organization.
func (s *Service) DraftSubmitted(ctx context.Context, d *draft.Draft) error {
	recipients, err := s.directory.AllPrivileged()
	if err != nil {
		return fmt.Errorf("resolve privileged users: %w", err)
	}
	title := "Draft TNA submitted"
	body := fmt.Sprintf("Draft TNA %q for %d was submitted for approval.", d.Description, d.Year)
	return s.fanOut(ctx, recipients, TypeDraftTNASubmitted, title, body, nil, &d.ID)
}

// ListForUser returns the actor's inbox, newest first.
func (s *Service) ListForUser(ctx context.Context, actor *auth.Actor, limit, offset int) ([]*Notification, error) {
	items, err := s.repo.GetByUserID(actor.UserID, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list notifications", err)
	}
	return items, nil
}

// CountUnread returns the number of unread notifications for the actor.
func (s *Service) CountUnread(ctx context.Context, actor *auth.Actor) (int64, error) {
	count, err := s.repo.CountUnread(actor.UserID)
	if err != nil {
		return 0, internal.NewInternalError("failed to count notifications", err)
	}
	return count, nil
}

// MarkRead marks one of the actor's notifications as read.
func (s *Service) MarkRead(ctx context.Context, actor *auth.Actor, id int64) error {
	n, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrNotificationNotFound
	}
	if n.UserID != actor.UserID {
		return internal.NewForbiddenError("notification belongs to another user", internal.ErrCodeRoleForbidden)
	}
	if err := s.repo.MarkRead(id); err != nil {
		return internal.NewInternalError("failed to mark notification read", err)
	}
	return nil
}

// MarkAllRead marks the actor's whole inbox as read.
func (s *Service) MarkAllRead(ctx context.Context, actor *auth.Actor) error {
	if err := s.repo.MarkAllRead(actor.UserID); err != nil {
		return internal.NewInternalError("failed to mark notifications read", err)
	}
	return nil
}

// Delete removes one of the actor's notifications.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	n, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrNotificationNotFound
	}
	if n.UserID != actor.UserID {
		return internal.NewForbiddenError("notification belongs to another user", internal.ErrCodeRoleForbidden)
	}
	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete notification", err)
	}
	return nil
}

func (s *Service) branchAdmins(p *proposal.Proposal) ([]Recipient, error) {
	if p.BranchID == nil {
		// No branch means no admin audience; superadmins still see the
		// proposal through their org-wide listing.
		return nil, nil
	}
	recipients, err := s.directory.AdminsForBranch(*p.BranchID)
	if err != nil {
		return nil, fmt.Errorf("resolve branch admins: %w", err)
	}
	return recipients, nil
}

func (s *Service) owner(p *proposal.Proposal) (*Recipient, error) {
	owner, err := s.directory.UserByID(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve proposal owner: %w", err)
	}
	return owner, nil
}

// fanOut writes one notification row per recipient and publishes a created
// event for each so secondary channels can deliver copies. A failed write for
// one recipient does not stop the rest.
func (s *Service) fanOut(ctx context.Context, recipients []Recipient, notifType, title, body string, proposalID, draftID *int64) error {
	var firstErr error
	for _, r := range recipients {
		n := &Notification{
			UserID:     r.UserID,
			ProposalID: proposalID,
			DraftID:    draftID,
			Type:       notifType,
			Title:      title,
			Body:       body,
		}
		if err := s.repo.Create(n); err != nil {
			s.logger.ErrorContext(ctx, "failed to write notification",
				slog.Int64("recipient_id", r.UserID),
				slog.String("type", notifType),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if s.bus != nil {
			event := events.NewNotificationCreatedEvent(n.ID, r.UserID, notifType, title, body)
			if err := s.bus.Publish(ctx, event); err != nil {
				s.logger.WarnContext(ctx, "failed to publish notification event",
					slog.Int64("notification_id", n.ID),
					slog.String("error", err.Error()))
			}
		}
	}
	return firstErr
}

func mergeRecipients(a, b []Recipient) []Recipient {
	seen := make(map[int64]bool, len(a))
	merged := make([]Recipient, 0, len(a)+len(b))
	for _, r := range a {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			merged = append(merged, r)
		}
	}
	for _, r := range b {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			merged = append(merged, r)
		}
	}
	return merged
}

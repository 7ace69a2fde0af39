package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeProposalStatusChanged = "proposal.status_changed"
	EventTypeProposalImplemented   = "proposal.implemented"
	EventTypeDraftSubmitted        = "draft.submitted"
	EventTypeNotificationCreated   = "notification.created"
)

type ProposalStatusChangedEvent struct {
	BaseEvent
	ProposalID int64  `json:"proposal_id"`
	OwnerID    int64  `json:"owner_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    int64  `json:"actor_id"`
	ActorRole  string `json:"actor_role"`
}

func NewProposalStatusChangedEvent(proposalID, ownerID int64, fromStatus, toStatus string, actorID int64, actorRole string) *ProposalStatusChangedEvent {
	return &ProposalStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeProposalStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"proposal_id": proposalID,
				"owner_id":    ownerID,
				"from_status": fromStatus,
				"to_status":   toStatus,
				"actor_id":    actorID,
				"actor_role":  actorRole,
			},
		},
		ProposalID: proposalID,
		OwnerID:    ownerID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		ActorID:    actorID,
		ActorRole:  actorRole,
	}
}

type ProposalImplementedEvent struct {
	BaseEvent
	ProposalID   int64 `json:"proposal_id"`
	OwnerID      int64 `json:"owner_id"`
	BranchID     int64 `json:"branch_id"`
	DraftCreated bool  `json:"draft_created"`
}

func NewProposalImplementedEvent(proposalID, ownerID, branchID int64, draftCreated bool) *ProposalImplementedEvent {
	return &ProposalImplementedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeProposalImplemented,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"proposal_id":   proposalID,
				"owner_id":      ownerID,
				"branch_id":     branchID,
				"draft_created": draftCreated,
			},
		},
		ProposalID:   proposalID,
		OwnerID:      ownerID,
		BranchID:     branchID,
		DraftCreated: draftCreated,
	}
}

type DraftSubmittedEvent struct {
	BaseEvent
	DraftID  int64 `json:"draft_id"`
	BranchID int64 `json:"branch_id"`
	ActorID  int64 `json:"actor_id"`
}

func NewDraftSubmittedEvent(draftID, branchID, actorID int64) *DraftSubmittedEvent {
	return &DraftSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDraftSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"draft_id":  draftID,
				"branch_id": branchID,
				"actor_id":  actorID,
			},
		},
		DraftID:  draftID,
		BranchID: branchID,
		ActorID:  actorID,
	}
}

// NotificationCreatedEvent lets secondary delivery channels (e.g. the SMTP
// mailer) pick up freshly written notifications without coupling them to the
// fan-out service.
type NotificationCreatedEvent struct {
	BaseEvent
	NotificationID int64  `json:"notification_id"`
	RecipientID    int64  `json:"recipient_id"`
	NotifType      string `json:"notif_type"`
	Title          string `json:"title"`
	Body           string `json:"body"`
}

func NewNotificationCreatedEvent(notificationID, recipientID int64, notifType, title, body string) *NotificationCreatedEvent {
	return &NotificationCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeNotificationCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"notification_id": notificationID,
				"recipient_id":    recipientID,
				"notif_type":      notifType,
			},
		},
		NotificationID: notificationID,
		RecipientID:    recipientID,
		NotifType:      notifType,
		Title:          title,
		Body:           body,
	}
}

// Package notification writes in-app notifications for every approval-chain
// transition and exposes the per-user inbox. Delivery is best-effort; callers
// never roll back a state change because a recipient could not be notified.
package notification

import (
	"time"

	notificationDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/notification"
)

// Persisted notification type values. APPROVE_ADMIN and APPROVE_SUPERADMIN
// mirror the proposal status that triggered them.
const (
	TypeProposalSubmitted = "PROPOSAL_SUBMITTED"
	TypeApproveAdmin      = "APPROVE_ADMIN"
	TypeApproveSuperadmin = "APPROVE_SUPERADMIN"
	TypeRejectAdmin       = "REJECT_ADMIN"
	TypeRejectSuperadmin  = "REJECT_SUPERADMIN"
	TypeDraftTNASubmitted = "DRAFT_TNA_SUBMITTED"
)

type Notification struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	ProposalID *int64     `json:"proposal_id,omitempty"`
	DraftID    *int64     `json:"draft_id,omitempty"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Recipient is the slice of a user the fan-out needs: where to write the
// in-app notification and, when mail is enabled, where to send the copy.
type Recipient struct {
	UserID int64
	Name   string
	Email  string
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:         n.ID,
		UserID:     n.UserID,
		ProposalID: n.ProposalID,
		DraftID:    n.DraftID,
		Type:       n.Type,
		Title:      n.Title,
		Body:       n.Body,
		IsRead:     n.IsRead,
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}

func FromDataModel(dm *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:         dm.ID,
		UserID:     dm.UserID,
		ProposalID: dm.ProposalID,
		DraftID:    dm.DraftID,
		Type:       dm.Type,
		Title:      dm.Title,
		Body:       dm.Body,
		IsRead:     dm.IsRead,
		ReadAt:     dm.ReadAt,
		CreatedAt:  dm.CreatedAt,
	}
}

func FromDataModelSlice(dms []*notificationDatamodel.Notification) []*Notification {
	result := make([]*Notification, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}

// Package proposal implements the training-proposal approval workflow: a
// three-tier chain (user submits, admin approves, superadmin approves, admin
// confirms back to the user) with a rejection/revision loop and a post-approval
// implementation sub-state.
//
// Note on APPROVE_ADMIN: the persisted status enum is three approval values
// plus DITOLAK, and APPROVE_ADMIN carries two meanings depending on history —
// "admin approved, waiting for superadmin" (reached from MENUNGGU) and "admin
// confirmed the superadmin's approval to the user" (reached from
// APPROVE_SUPERADMIN). The stored value is kept as-is for data compatibility;
// the transition table below is the single source of legality.
package proposal

import (
	"time"

	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	proposalDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/proposal"
)

const (
	StatusMenunggu          = "MENUNGGU"
	StatusApproveAdmin      = "APPROVE_ADMIN"
	StatusApproveSuperadmin = "APPROVE_SUPERADMIN"
	StatusDitolak           = "DITOLAK"

	ImplementationPending = "BELUM_IMPLEMENTASI"
	ImplementationDone    = "SUDAH_IMPLEMENTASI"

	LevelStructural = "STRUKTURAL"
	// LevelNonStructural is persisted with a space, not an underscore.
	LevelNonStructural = "NON STRUKTURAL"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusMenunggu, StatusApproveAdmin, StatusApproveSuperadmin, StatusDitolak:
		return true
	}
	return false
}

func ValidImplementationStatus(s string) bool {
	return s == ImplementationPending || s == ImplementationDone
}

func ValidLevel(s string) bool {
	return s == LevelStructural || s == LevelNonStructural
}

type Proposal struct {
	ID                    int64      `json:"id"`
	UserID                int64      `json:"user_id"`
	BranchID              *int64     `json:"branch_id,omitempty"`
	DivisionID            *int64     `json:"division_id,omitempty"`
	Description           string     `json:"description"`
	ScheduledDate         *time.Time `json:"scheduled_date,omitempty"`
	ParticipantCount      int        `json:"participant_count"`
	DurationDays          int        `json:"duration_days"`
	Level                 string     `json:"level,omitempty"`
	BaseCost              int64      `json:"base_cost"`
	TransportCost         int64      `json:"transport_cost"`
	LodgingCost           int64      `json:"lodging_cost"`
	PerDiemCost           int64      `json:"per_diem_cost"`
	TotalCost             int64      `json:"total_cost"`
	Status                string     `json:"status"`
	ImplementationStatus  *string    `json:"implementation_status,omitempty"`
	RejectionReason       *string    `json:"rejection_reason,omitempty"`
	RealizationEvaluation *string    `json:"realization_evaluation,omitempty"`
	IsRevision            bool       `json:"is_revision"`
	OriginalProposalID    *int64     `json:"original_proposal_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	Items []Item `json:"items,omitempty"`
}

type Item struct {
	ID               int64      `json:"id"`
	ProposalID       int64      `json:"proposal_id"`
	Description      string     `json:"description"`
	ScheduledDate    *time.Time `json:"scheduled_date,omitempty"`
	ParticipantCount int        `json:"participant_count"`
	DurationDays     int        `json:"duration_days"`
	Level            string     `json:"level,omitempty"`
	BaseCost         int64      `json:"base_cost"`
	TransportCost    int64      `json:"transport_cost"`
	LodgingCost      int64      `json:"lodging_cost"`
	PerDiemCost      int64      `json:"per_diem_cost"`
	TotalCost        int64      `json:"total_cost"`
}

// IsEditable reports whether the owner may still change content or delete.
func (p *Proposal) IsEditable() bool {
	return p.Status == StatusMenunggu || p.Status == StatusDitolak
}

// IsApproved reports whether the proposal has reached an approved state, the
// gate for the implementation sub-state.
func (p *Proposal) IsApproved() bool {
	return p.Status == StatusApproveAdmin || p.Status == StatusApproveSuperadmin
}

// RecalculateTotals derives header cost and schedule values. With line items
// present, the parent's cost fields are the sums over items and the first
// item's date and participant count stand in as header values; without items
// the header fields are authoritative and the total is the sum of the four
// cost components.
func (p *Proposal) RecalculateTotals() {
	if len(p.Items) == 0 {
		p.TotalCost = p.BaseCost + p.TransportCost + p.LodgingCost + p.PerDiemCost
		return
	}

	var base, transport, lodging, perDiem, total int64
	for i := range p.Items {
		item := &p.Items[i]
		item.TotalCost = item.BaseCost + item.TransportCost + item.LodgingCost + item.PerDiemCost
		base += item.BaseCost
		transport += item.TransportCost
		lodging += item.LodgingCost
		perDiem += item.PerDiemCost
		total += item.TotalCost
	}

	p.BaseCost = base
	p.TransportCost = transport
	p.LodgingCost = lodging
	p.PerDiemCost = perDiem
	p.TotalCost = total

	first := p.Items[0]
	p.ScheduledDate = first.ScheduledDate
	p.ParticipantCount = first.ParticipantCount
	if first.DurationDays > 0 {
		p.DurationDays = first.DurationDays
	}
	if first.Level != "" {
		p.Level = first.Level
	}
}

// TransitionEffect identifies which table row a legal transition matched, so
// the service can run the matching side effects.
type TransitionEffect int

const (
	EffectForwardToSuperadmin TransitionEffect = iota // admin: MENUNGGU -> APPROVE_ADMIN
	EffectRejectByAdmin                               // admin: MENUNGGU -> DITOLAK
	EffectConfirmToOwner                              // admin: APPROVE_SUPERADMIN -> APPROVE_ADMIN
	EffectSuperadminApprove                           // superadmin: APPROVE_ADMIN -> APPROVE_SUPERADMIN
	EffectRejectBySuperadmin                          // superadmin: APPROVE_ADMIN -> DITOLAK
)

// ResolveTransition checks (actor role, current status, requested status)
// against the transition table. Plain users can never change status; for the
// privileged roles any pair outside the table is an invalid transition.
func ResolveTransition(role auth.Role, current, requested string) (TransitionEffect, error) {
	if role == auth.RoleUser || !role.IsPrivileged() {
		return 0, internal.ErrRoleForbidden
	}

	switch role {
	case auth.RoleAdmin:
		switch {
		case requested == StatusApproveAdmin && current == StatusMenunggu:
			return EffectForwardToSuperadmin, nil
		case requested == StatusApproveAdmin && current == StatusApproveSuperadmin:
			return EffectConfirmToOwner, nil
		case requested == StatusDitolak && current == StatusMenunggu:
			return EffectRejectByAdmin, nil
		}
	case auth.RoleSuperadmin:
		switch {
		case requested == StatusApproveSuperadmin && current == StatusApproveAdmin:
			return EffectSuperadminApprove, nil
		case requested == StatusDitolak && current == StatusApproveAdmin:
			return EffectRejectBySuperadmin, nil
		}
	}

	return 0, internal.NewInvalidTransitionError(current, requested)
}

// IsRejection reports whether the effect ends in DITOLAK.
func (e TransitionEffect) IsRejection() bool {
	return e == EffectRejectByAdmin || e == EffectRejectBySuperadmin
}

func ToDataModel(p *Proposal) *proposalDatamodel.Proposal {
	dm := &proposalDatamodel.Proposal{
		ID:                    p.ID,
		UserID:                p.UserID,
		BranchID:              p.BranchID,
		DivisionID:            p.DivisionID,
		Description:           p.Description,
		ScheduledDate:         p.ScheduledDate,
		ParticipantCount:      p.ParticipantCount,
		DurationDays:          p.DurationDays,
		Level:                 p.Level,
		BaseCost:              p.BaseCost,
		TransportCost:         p.TransportCost,
		LodgingCost:           p.LodgingCost,
		PerDiemCost:           p.PerDiemCost,
		TotalCost:             p.TotalCost,
		Status:                p.Status,
		ImplementationStatus:  p.ImplementationStatus,
		RejectionReason:       p.RejectionReason,
		RealizationEvaluation: p.RealizationEvaluation,
		IsRevision:            p.IsRevision,
		OriginalProposalID:    p.OriginalProposalID,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
	for _, item := range p.Items {
		dm.Items = append(dm.Items, proposalDatamodel.ProposalItem{
			ID:               item.ID,
			ProposalID:       item.ProposalID,
			Description:      item.Description,
			ScheduledDate:    item.ScheduledDate,
			ParticipantCount: item.ParticipantCount,
			DurationDays:     item.DurationDays,
			Level:            item.Level,
			BaseCost:         item.BaseCost,
			TransportCost:    item.TransportCost,
			LodgingCost:      item.LodgingCost,
			PerDiemCost:      item.PerDiemCost,
			TotalCost:        item.TotalCost,
		})
	}
	return dm
}

func FromDataModel(dm *proposalDatamodel.Proposal) *Proposal {
	p := &Proposal{
		ID:                    dm.ID,
		UserID:                dm.UserID,
		BranchID:              dm.BranchID,
		DivisionID:            dm.DivisionID,
		Description:           dm.Description,
		ScheduledDate:         dm.ScheduledDate,
		ParticipantCount:      dm.ParticipantCount,
		DurationDays:          dm.DurationDays,
		Level:                 dm.Level,
		BaseCost:              dm.BaseCost,
		TransportCost:         dm.TransportCost,
		LodgingCost:           dm.LodgingCost,
		PerDiemCost:           dm.PerDiemCost,
		TotalCost:             dm.TotalCost,
		Status:                dm.Status,
		ImplementationStatus:  dm.ImplementationStatus,
		RejectionReason:       dm.RejectionReason,
		RealizationEvaluation: dm.RealizationEvaluation,
		IsRevision:            dm.IsRevision,
		OriginalProposalID:    dm.OriginalProposalID,
		CreatedAt:             dm.CreatedAt,
		UpdatedAt:             dm.UpdatedAt,
	}
	for _, item := range dm.Items {
		p.Items = append(p.Items, Item{
			ID:               item.ID,
			ProposalID:       item.ProposalID,
			Description:      item.Description,
			ScheduledDate:    item.ScheduledDate,
			ParticipantCount: item.ParticipantCount,
			DurationDays:     item.DurationDays,
			Level:            item.Level,
			BaseCost:         item.BaseCost,
			TransportCost:    item.TransportCost,
			LodgingCost:      item.LodgingCost,
			PerDiemCost:      item.PerDiemCost,
			TotalCost:        item.TotalCost,
		})
	}
	return p
}

func FromDataModelSlice(dms []*proposalDatamodel.Proposal) []*Proposal {
	result := make([]*Proposal, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}

package draft

import (
	"time"

	draftDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/draft"
)

const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved:
		return true
	}
	return false
}

// Draft is a yearly "Draft TNA" planning record. At most one exists per
// (description, scheduled date, branch) triple; the synchronizer relies on
// that key for idempotent creation.
type Draft struct {
	ID               int64      `json:"id"`
	Year             int        `json:"year"`
	BranchID         int64      `json:"branch_id"`
	DivisionID       *int64     `json:"division_id,omitempty"`
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
	Status           string     `json:"status"`
	CreatedBy        int64      `json:"created_by"`
	UpdatedBy        *int64     `json:"updated_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CanSubmit reports whether the draft may move DRAFT -> SUBMITTED.
func (d *Draft) CanSubmit() bool {
	return d.Status == StatusDraft
}

// CanApprove reports whether the draft may move SUBMITTED -> APPROVED.
func (d *Draft) CanApprove() bool {
	return d.Status == StatusSubmitted
}

func ToDataModel(d *Draft) *draftDatamodel.DraftTNA {
	return &draftDatamodel.DraftTNA{
		ID:               d.ID,
		Year:             d.Year,
		BranchID:         d.BranchID,
		DivisionID:       d.DivisionID,
		Description:      d.Description,
		ScheduledDate:    d.ScheduledDate,
		ParticipantCount: d.ParticipantCount,
		DurationDays:     d.DurationDays,
		Level:            d.Level,
		BaseCost:         d.BaseCost,
		TransportCost:    d.TransportCost,
		LodgingCost:      d.LodgingCost,
		PerDiemCost:      d.PerDiemCost,
		TotalCost:        d.TotalCost,
		Status:           d.Status,
		CreatedBy:        d.CreatedBy,
		UpdatedBy:        d.UpdatedBy,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func FromDataModel(dm *draftDatamodel.DraftTNA) *Draft {
	return &Draft{
		ID:               dm.ID,
		Year:             dm.Year,
		BranchID:         dm.BranchID,
		DivisionID:       dm.DivisionID,
		Description:      dm.Description,
		ScheduledDate:    dm.ScheduledDate,
		ParticipantCount: dm.ParticipantCount,
		DurationDays:     dm.DurationDays,
		Level:            dm.Level,
		BaseCost:         dm.BaseCost,
		TransportCost:    dm.TransportCost,
		LodgingCost:      dm.LodgingCost,
		PerDiemCost:      dm.PerDiemCost,
		TotalCost:        dm.TotalCost,
		Status:           dm.Status,
		CreatedBy:        dm.CreatedBy,
		UpdatedBy:        dm.UpdatedBy,
		CreatedAt:        dm.CreatedAt,
		UpdatedAt:        dm.UpdatedAt,
	}
}

func FromDataModelSlice(dms []*draftDatamodel.DraftTNA) []*Draft {
	result := make([]*Draft, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}

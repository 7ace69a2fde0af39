package draft

import (
	"time"

	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/core/common/validation"
	"github.com/frahmantamala/training-management/internal/proposal"
)

// CreateDraftDTO is the manual planning entry, created by admins ahead of the
// synchronizer ever seeing a matching proposal.
type CreateDraftDTO struct {
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
}

func (dto CreateDraftDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("year", dto.Year).Required().MinInt(2000, internal.ErrCodeInvalidDate)
	v.Field("branch_id", dto.BranchID).Required()
	v.Field("description", dto.Description).Required().MaxLength(500)
	v.Field("level", dto.Level).OneOf(internal.ErrCodeInvalidLevel, proposal.LevelStructural, proposal.LevelNonStructural)
	v.Field("participant_count", int64(dto.ParticipantCount)).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("duration_days", int64(dto.DurationDays)).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("base_cost", dto.BaseCost).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("transport_cost", dto.TransportCost).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("lodging_cost", dto.LodgingCost).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("per_diem_cost", dto.PerDiemCost).MinInt(0, internal.ErrCodeValidationFailed)
	return v.Validate()
}

// UpdateDraftDTO carries partial content edits; nil fields are left unchanged.
type UpdateDraftDTO struct {
	Description      *string    `json:"description,omitempty"`
	ScheduledDate    *time.Time `json:"scheduled_date,omitempty"`
	ParticipantCount *int       `json:"participant_count,omitempty"`
	DurationDays     *int       `json:"duration_days,omitempty"`
	Level            *string    `json:"level,omitempty"`
	BaseCost         *int64     `json:"base_cost,omitempty"`
	TransportCost    *int64     `json:"transport_cost,omitempty"`
	LodgingCost      *int64     `json:"lodging_cost,omitempty"`
	PerDiemCost      *int64     `json:"per_diem_cost,omitempty"`
}

func (dto UpdateDraftDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if dto.Description != nil {
		v.Field("description", *dto.Description).Required().MaxLength(500)
	}
	if dto.Level != nil {
		v.Field("level", *dto.Level).OneOf(internal.ErrCodeInvalidLevel, proposal.LevelStructural, proposal.LevelNonStructural)
	}
	return v.Validate()
}

// UpdateDraftStatusDTO carries a requested planning-status transition.
type UpdateDraftStatusDTO struct {
	Status string `json:"status"`
}

func (dto UpdateDraftStatusDTO) Validate() *internal.AppError {
	if dto.Status == "" {
		return internal.NewValidationError("status is required", internal.ErrCodeInvalidStatus)
	}
	if !ValidStatus(dto.Status) {
		return internal.NewValidationError("status must be one of DRAFT, SUBMITTED, APPROVED", internal.ErrCodeInvalidStatus)
	}
	return nil
}

// ListDraftsFilter narrows the draft listing; zero values mean no filter.
type ListDraftsFilter struct {
	Year     int
	BranchID int64
	Status   string
}

package proposal

import (
	"time"

	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/core/common/validation"
)

// ItemDTO mirrors the cost and scheduling fields of the parent for one line item.
type ItemDTO struct {
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

// CreateProposalDTO is the submission payload. Status is never taken from the
// client; a new proposal is always forced to MENUNGGU.
type CreateProposalDTO struct {
	Description      string     `json:"description"`
	ScheduledDate    *time.Time `json:"scheduled_date,omitempty"`
	ParticipantCount int        `json:"participant_count"`
	DurationDays     int        `json:"duration_days"`
	Level            string     `json:"level,omitempty"`
	BaseCost         int64      `json:"base_cost"`
	TransportCost    int64      `json:"transport_cost"`
	LodgingCost      int64      `json:"lodging_cost"`
	PerDiemCost      int64      `json:"per_diem_cost"`
	Items            []ItemDTO  `json:"items,omitempty"`
}

func (dto CreateProposalDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("description", dto.Description).Required().MaxLength(500)
	v.Field("level", dto.Level).OneOf(internal.ErrCodeInvalidLevel, LevelStructural, LevelNonStructural)
	v.Field("participant_count", int64(dto.ParticipantCount)).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("duration_days", int64(dto.DurationDays)).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("base_cost", dto.BaseCost).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("transport_cost", dto.TransportCost).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("lodging_cost", dto.LodgingCost).MinInt(0, internal.ErrCodeValidationFailed)
	v.Field("per_diem_cost", dto.PerDiemCost).MinInt(0, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}

	for _, item := range dto.Items {
		iv := validation.NewValidator()
		iv.Field("items.description", item.Description).Required().MaxLength(500)
		iv.Field("items.level", item.Level).OneOf(internal.ErrCodeInvalidLevel, LevelStructural, LevelNonStructural)
		iv.Field("items.base_cost", item.BaseCost).MinInt(0, internal.ErrCodeValidationFailed)
		iv.Field("items.transport_cost", item.TransportCost).MinInt(0, internal.ErrCodeValidationFailed)
		iv.Field("items.lodging_cost", item.LodgingCost).MinInt(0, internal.ErrCodeValidationFailed)
		iv.Field("items.per_diem_cost", item.PerDiemCost).MinInt(0, internal.ErrCodeValidationFailed)
		if err := iv.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// UpdateStatusDTO carries a requested approval-status transition.
type UpdateStatusDTO struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (dto UpdateStatusDTO) Validate() *internal.AppError {
	if dto.Status == "" {
		return internal.NewValidationError("status is required", internal.ErrCodeInvalidStatus)
	}
	if !ValidStatus(dto.Status) {
		return internal.NewValidationError("status must be one of MENUNGGU, APPROVE_ADMIN, APPROVE_SUPERADMIN, DITOLAK", internal.ErrCodeInvalidStatus)
	}
	return nil
}

// UpdateImplementationDTO carries the implementation sub-state change.
type UpdateImplementationDTO struct {
	ImplementationStatus string `json:"implementation_status"`
	Evaluation           string `json:"evaluation,omitempty"`
}

func (dto UpdateImplementationDTO) Validate() *internal.AppError {
	if dto.ImplementationStatus == "" {
		return internal.NewValidationError("implementation_status is required", internal.ErrCodeInvalidStatus)
	}
	if !ValidImplementationStatus(dto.ImplementationStatus) {
		return internal.NewValidationError("implementation_status must be BELUM_IMPLEMENTASI or SUDAH_IMPLEMENTASI", internal.ErrCodeInvalidStatus)
	}
	return nil
}

// UpdateProposalDTO is the owner edit payload; editing a DITOLAK proposal
// re-submits it as a revision.
type UpdateProposalDTO struct {
	Description      string     `json:"description"`
	ScheduledDate    *time.Time `json:"scheduled_date,omitempty"`
	ParticipantCount int        `json:"participant_count"`
	DurationDays     int        `json:"duration_days"`
	Level            string     `json:"level,omitempty"`
	BaseCost         int64      `json:"base_cost"`
	TransportCost    int64      `json:"transport_cost"`
	LodgingCost      int64      `json:"lodging_cost"`
	PerDiemCost      int64      `json:"per_diem_cost"`
	Items            []ItemDTO  `json:"items,omitempty"`
}

func (dto UpdateProposalDTO) Validate() *internal.AppError {
	return CreateProposalDTO{
		Description:      dto.Description,
		ScheduledDate:    dto.ScheduledDate,
		ParticipantCount: dto.ParticipantCount,
		DurationDays:     dto.DurationDays,
		Level:            dto.Level,
		BaseCost:         dto.BaseCost,
		TransportCost:    dto.TransportCost,
		LodgingCost:      dto.LodgingCost,
		PerDiemCost:      dto.PerDiemCost,
		Items:            dto.Items,
	}.Validate()
}

func itemsFromDTO(items []ItemDTO) []Item {
	result := make([]Item, len(items))
	for i, dto := range items {
		result[i] = Item{
			Description:      dto.Description,
			ScheduledDate:    dto.ScheduledDate,
			ParticipantCount: dto.ParticipantCount,
			DurationDays:     dto.DurationDays,
			Level:            dto.Level,
			BaseCost:         dto.BaseCost,
			TransportCost:    dto.TransportCost,
			LodgingCost:      dto.LodgingCost,
			PerDiemCost:      dto.PerDiemCost,
		}
	}
	return result
}

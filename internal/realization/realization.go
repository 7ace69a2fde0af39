package realization

import (
	"time"

	realizationDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/realization"
)

// Realization is a monthly aggregate of implemented training activity per
// branch. One row exists per (branch, month, year); the synchronizer
// accumulates into it rather than inserting duplicates.
type Realization struct {
	ID                int64     `json:"id"`
	BranchID          int64     `json:"branch_id"`
	VenueName         string    `json:"venue_name,omitempty"`
	Address           string    `json:"address,omitempty"`
	Month             int       `json:"month"`
	Year              int       `json:"year"`
	ActivityCount     int       `json:"activity_count"`
	TotalParticipants int       `json:"total_participants"`
	TotalCost         int64     `json:"total_cost"`
	Notes             string    `json:"notes,omitempty"`
	CreatedBy         int64     `json:"created_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func ToDataModel(r *Realization) *realizationDatamodel.Realization {
	return &realizationDatamodel.Realization{
		ID:                r.ID,
		BranchID:          r.BranchID,
		VenueName:         r.VenueName,
		Address:           r.Address,
		Month:             r.Month,
		Year:              r.Year,
		ActivityCount:     r.ActivityCount,
		TotalParticipants: r.TotalParticipants,
		TotalCost:         r.TotalCost,
		Notes:             r.Notes,
		CreatedBy:         r.CreatedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func FromDataModel(dm *realizationDatamodel.Realization) *Realization {
	return &Realization{
		ID:                dm.ID,
		BranchID:          dm.BranchID,
		VenueName:         dm.VenueName,
		Address:           dm.Address,
		Month:             dm.Month,
		Year:              dm.Year,
		ActivityCount:     dm.ActivityCount,
		TotalParticipants: dm.TotalParticipants,
		TotalCost:         dm.TotalCost,
		Notes:             dm.Notes,
		CreatedBy:         dm.CreatedBy,
		CreatedAt:         dm.CreatedAt,
		UpdatedAt:         dm.UpdatedAt,
	}
}

func FromDataModelSlice(dms []*realizationDatamodel.Realization) []*Realization {
	result := make([]*Realization, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}

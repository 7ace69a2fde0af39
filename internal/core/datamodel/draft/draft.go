package draft

import "time"

// DraftTNA is the yearly training-needs-analysis planning record. The
// synchronizer de-duplicates on (description, scheduled_date, branch_id).
type DraftTNA struct {
	ID               int64      `gorm:"primaryKey"`
	Year             int        `gorm:"column:year;not null"`
	BranchID         int64      `gorm:"column:branch_id;not null"`
	DivisionID       *int64     `gorm:"column:division_id"`
	Description      string     `gorm:"not null"`
	ScheduledDate    *time.Time `gorm:"column:scheduled_date;type:date"`
	ParticipantCount int        `gorm:"column:participant_count"`
	DurationDays     int        `gorm:"column:duration_days"`
	Level            string     `gorm:"column:level"`
	BaseCost         int64      `gorm:"column:base_cost"`
	TransportCost    int64      `gorm:"column:transport_cost"`
	LodgingCost      int64      `gorm:"column:lodging_cost"`
	PerDiemCost      int64      `gorm:"column:per_diem_cost"`
	TotalCost        int64      `gorm:"column:total_cost"`
	Status           string     `gorm:"column:status;default:DRAFT"`
	CreatedBy        int64      `gorm:"column:created_by;not null"`
	UpdatedBy        *int64     `gorm:"column:updated_by"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (DraftTNA) TableName() string {
	return "draft_tna"
}

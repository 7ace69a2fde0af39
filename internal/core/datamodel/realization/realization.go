package realization

import "time"

// Realization is the monthly per-branch training-venue rollup. One row per
// (branch_id, month, year); each implemented activity accumulates into it.
type Realization struct {
	ID                int64     `gorm:"primaryKey"`
	BranchID          int64     `gorm:"column:branch_id;not null"`
	VenueName         string    `gorm:"column:venue_name"`
	Address           string    `gorm:"column:address"`
	Month             int       `gorm:"column:month;not null"`
	Year              int       `gorm:"column:year;not null"`
	ActivityCount     int       `gorm:"column:activity_count;default:0"`
	TotalParticipants int       `gorm:"column:total_participants;default:0"`
	TotalCost         int64     `gorm:"column:total_cost;default:0"`
	Notes             string    `gorm:"column:notes"`
	CreatedBy         int64     `gorm:"column:created_by;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Realization) TableName() string {
	return "training_realizations"
}

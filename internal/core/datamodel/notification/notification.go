package notification

import "time"

type Notification struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null"`
	ProposalID *int64     `gorm:"column:proposal_id"`
	DraftID    *int64     `gorm:"column:draft_id"`
	Type       string     `gorm:"column:type;not null"`
	Title      string     `gorm:"column:title"`
	Body       string     `gorm:"column:body"`
	IsRead     bool       `gorm:"column:is_read;default:false"`
	ReadAt     *time.Time `gorm:"column:read_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

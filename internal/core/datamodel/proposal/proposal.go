package proposal

import "time"

type Proposal struct {
	ID                    int64      `gorm:"primaryKey"`
	UserID                int64      `gorm:"column:user_id;not null"`
	BranchID              *int64     `gorm:"column:branch_id"`
	DivisionID            *int64     `gorm:"column:division_id"`
	Description           string     `gorm:"not null"`
	ScheduledDate         *time.Time `gorm:"column:scheduled_date;type:date"`
	ParticipantCount      int        `gorm:"column:participant_count"`
	DurationDays          int        `gorm:"column:duration_days"`
	Level                 string     `gorm:"column:level"`
	BaseCost              int64      `gorm:"column:base_cost"`
	TransportCost         int64      `gorm:"column:transport_cost"`
	LodgingCost           int64      `gorm:"column:lodging_cost"`
	PerDiemCost           int64      `gorm:"column:per_diem_cost"`
	TotalCost             int64      `gorm:"column:total_cost"`
	Status                string     `gorm:"column:status;default:MENUNGGU"`
	ImplementationStatus  *string    `gorm:"column:implementation_status"`
	RejectionReason       *string    `gorm:"column:rejection_reason"`
	RealizationEvaluation *string    `gorm:"column:realization_evaluation"`
	IsRevision            bool       `gorm:"column:is_revision;default:false"`
	OriginalProposalID    *int64     `gorm:"column:original_proposal_id"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Items []ProposalItem `gorm:"foreignKey:ProposalID"`
}

func (Proposal) TableName() string {
	return "proposals"
}

type ProposalItem struct {
	ID               int64      `gorm:"primaryKey"`
	ProposalID       int64      `gorm:"column:proposal_id;not null"`
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
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (ProposalItem) TableName() string {
	return "proposal_items"
}

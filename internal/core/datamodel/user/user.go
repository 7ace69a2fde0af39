package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;default:user"`
	BranchID     *int64    `gorm:"column:branch_id"`
	DivisionID   *int64    `gorm:"column:division_id"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type Branch struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Address      string    `gorm:"column:address"`
	SubsidiaryID *int64    `gorm:"column:subsidiary_id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Branch) TableName() string {
	return "branches"
}

type Division struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	BranchID  *int64    `gorm:"column:branch_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Division) TableName() string {
	return "divisions"
}

type Subsidiary struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Subsidiary) TableName() string {
	return "subsidiaries"
}

// Package user holds the organization reference data: accounts, branches,
// divisions and subsidiaries. Account management is a superadmin concern;
// the directory lookups are shared with the notification fan-out and the
// synchronizer.
package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/user"
)

type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	BranchID   *int64    `json:"branch_id,omitempty"`
	DivisionID *int64    `json:"division_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Branch struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	SubsidiaryID *int64    `json:"subsidiary_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Division struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BranchID  *int64    `json:"branch_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Subsidiary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUserDataModel(dm *userDatamodel.User) *User {
	return &User{
		ID:         dm.ID,
		Email:      dm.Email,
		Name:       dm.Name,
		Role:       dm.Role,
		BranchID:   dm.BranchID,
		DivisionID: dm.DivisionID,
		IsActive:   dm.IsActive,
		CreatedAt:  dm.CreatedAt,
		UpdatedAt:  dm.UpdatedAt,
	}
}

func FromBranchDataModel(dm *userDatamodel.Branch) *Branch {
	return &Branch{
		ID:           dm.ID,
		Name:         dm.Name,
		Address:      dm.Address,
		SubsidiaryID: dm.SubsidiaryID,
		CreatedAt:    dm.CreatedAt,
	}
}

func FromDivisionDataModel(dm *userDatamodel.Division) *Division {
	return &Division{
		ID:        dm.ID,
		Name:      dm.Name,
		BranchID:  dm.BranchID,
		CreatedAt: dm.CreatedAt,
	}
}

func FromSubsidiaryDataModel(dm *userDatamodel.Subsidiary) *Subsidiary {
	return &Subsidiary{
		ID:        dm.ID,
		Name:      dm.Name,
		CreatedAt: dm.CreatedAt,
	}
}

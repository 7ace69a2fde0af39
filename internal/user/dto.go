package user

import (
	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/common/validation"
)

type CreateUserDTO struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	BranchID   *int64 `json:"branch_id,omitempty"`
	DivisionID *int64 `json:"division_id,omitempty"`
}

func (dto CreateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().MaxLength(255)
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("password", dto.Password).Required().MinLength(8)
	v.Field("role", dto.Role).Required().OneOf(internal.ErrCodeValidationFailed,
		string(auth.RoleUser), string(auth.RoleAdmin), string(auth.RoleSuperadmin))
	return v.Validate()
}

// UpdateUserDTO carries partial account edits; nil fields are left unchanged.
type UpdateUserDTO struct {
	Name       *string `json:"name,omitempty"`
	Role       *string `json:"role,omitempty"`
	BranchID   *int64  `json:"branch_id,omitempty"`
	DivisionID *int64  `json:"division_id,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func (dto UpdateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(255)
	}
	if dto.Role != nil {
		v.Field("role", *dto.Role).OneOf(internal.ErrCodeValidationFailed,
			string(auth.RoleUser), string(auth.RoleAdmin), string(auth.RoleSuperadmin))
	}
	return v.Validate()
}

type CreateBranchDTO struct {
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	SubsidiaryID *int64 `json:"subsidiary_id,omitempty"`
}

func (dto CreateBranchDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(255)
	return v.Validate()
}

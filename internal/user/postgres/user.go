package postgres

import (
	"gorm.io/gorm"

	userDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/user"
	"github.com/frahmantamala/training-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(u *user.User, passwordHash string) error {
	dm := &userDatamodel.User{
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: passwordHash,
		Role:         u.Role,
		BranchID:     u.BranchID,
		DivisionID:   u.DivisionID,
		IsActive:     u.IsActive,
	}
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*u = *user.FromUserDataModel(dm)
	return nil
}

func (r *UserRepository) GetUserByID(id int64) (*user.User, error) {
	var dm userDatamodel.User
	if err := r.db.First(&dm, id).Error; err != nil {
		return nil, err
	}
	return user.FromUserDataModel(&dm), nil
}

func (r *UserRepository) ListUsers(limit, offset int) ([]*user.User, error) {
	var dms []*userDatamodel.User
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&dms).Error
	if err != nil {
		return nil, err
	}
	users := make([]*user.User, len(dms))
	for i, dm := range dms {
		users[i] = user.FromUserDataModel(dm)
	}
	return users, nil
}

func (r *UserRepository) UpdateUser(u *user.User) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":        u.Name,
			"role":        u.Role,
			"branch_id":   u.BranchID,
			"division_id": u.DivisionID,
			"is_active":   u.IsActive,
		}).Error
}

func (r *UserRepository) CreateBranch(b *user.Branch) error {
	dm := &userDatamodel.Branch{
		Name:         b.Name,
		Address:      b.Address,
		SubsidiaryID: b.SubsidiaryID,
	}
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*b = *user.FromBranchDataModel(dm)
	return nil
}

func (r *UserRepository) ListBranches() ([]*user.Branch, error) {
	var dms []*userDatamodel.Branch
	if err := r.db.Order("name").Find(&dms).Error; err != nil {
		return nil, err
	}
	branches := make([]*user.Branch, len(dms))
	for i, dm := range dms {
		branches[i] = user.FromBranchDataModel(dm)
	}
	return branches, nil
}

func (r *UserRepository) ListDivisions(branchID int64) ([]*user.Division, error) {
	query := r.db.Order("name")
	if branchID != 0 {
		query = query.Where("branch_id = ?", branchID)
	}
	var dms []*userDatamodel.Division
	if err := query.Find(&dms).Error; err != nil {
		return nil, err
	}
	divisions := make([]*user.Division, len(dms))
	for i, dm := range dms {
		divisions[i] = user.FromDivisionDataModel(dm)
	}
	return divisions, nil
}

func (r *UserRepository) ListSubsidiaries() ([]*user.Subsidiary, error) {
	var dms []*userDatamodel.Subsidiary
	if err := r.db.Order("name").Find(&dms).Error; err != nil {
		return nil, err
	}
	subsidiaries := make([]*user.Subsidiary, len(dms))
	for i, dm := range dms {
		subsidiaries[i] = user.FromSubsidiaryDataModel(dm)
	}
	return subsidiaries, nil
}

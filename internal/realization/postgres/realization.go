package postgres

import (
	"gorm.io/gorm"

	realizationDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/realization"
	"github.com/frahmantamala/training-management/internal/realization"
)

type RealizationRepository struct {
	db *gorm.DB
}

func NewRealizationRepository(db *gorm.DB) *RealizationRepository {
	return &RealizationRepository{db: db}
}

func (r *RealizationRepository) GetByID(id int64) (*realization.Realization, error) {
	var dm realizationDatamodel.Realization
	if err := r.db.First(&dm, id).Error; err != nil {
		return nil, err
	}
	return realization.FromDataModel(&dm), nil
}

func (r *RealizationRepository) List(filter realization.ListFilter, limit, offset int) ([]*realization.Realization, error) {
	query := r.db.Model(&realizationDatamodel.Realization{})
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Month != 0 {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}

	var dms []*realizationDatamodel.Realization
	err := query.Order("year DESC, month DESC").Limit(limit).Offset(offset).Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return realization.FromDataModelSlice(dms), nil
}

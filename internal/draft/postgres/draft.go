package postgres

import (
	"gorm.io/gorm"

	draftDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/draft"
	"github.com/frahmantamala/training-management/internal/draft"
)

type DraftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) Create(d *draft.Draft) error {
	dm := draft.ToDataModel(d)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*d = *draft.FromDataModel(dm)
	return nil
}

func (r *DraftRepository) GetByID(id int64) (*draft.Draft, error) {
	var dm draftDatamodel.DraftTNA
	if err := r.db.First(&dm, id).Error; err != nil {
		return nil, err
	}
	return draft.FromDataModel(&dm), nil
}

func (r *DraftRepository) List(filter draft.ListDraftsFilter, limit, offset int) ([]*draft.Draft, error) {
	query := r.db.Model(&draftDatamodel.DraftTNA{})
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var dms []*draftDatamodel.DraftTNA
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return draft.FromDataModelSlice(dms), nil
}

func (r *DraftRepository) Update(d *draft.Draft) error {
	return r.db.Save(draft.ToDataModel(d)).Error
}

func (r *DraftRepository) Delete(id int64) error {
	return r.db.Delete(&draftDatamodel.DraftTNA{}, id).Error
}

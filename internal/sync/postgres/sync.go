package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	draftDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/draft"
	realizationDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/realization"
	userDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/user"
	"github.com/frahmantamala/training-management/internal/draft"
	"github.com/frahmantamala/training-management/internal/realization"
)

// SyncRepository backs the synchronizer: Draft TNA lookup/insert, realization
// bucket accumulation and branch/owner resolution, all on the shared gorm DB.
type SyncRepository struct {
	db *gorm.DB
}

func NewSyncRepository(db *gorm.DB) *SyncRepository {
	return &SyncRepository{db: db}
}

func (r *SyncRepository) FindDraftByKey(description string, scheduledDate *time.Time, branchID int64) (*draft.Draft, error) {
	query := r.db.Where("description = ? AND branch_id = ?", description, branchID)
	if scheduledDate != nil {
		query = query.Where("scheduled_date = ?", scheduledDate)
	} else {
		query = query.Where("scheduled_date IS NULL")
	}

	var dm draftDatamodel.DraftTNA
	if err := query.First(&dm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return draft.FromDataModel(&dm), nil
}

func (r *SyncRepository) CreateDraft(d *draft.Draft) error {
	dm := draft.ToDataModel(d)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*d = *draft.FromDataModel(dm)
	return nil
}

func (r *SyncRepository) FindRealizationBucket(branchID int64, month, year int) (*realization.Realization, error) {
	var dm realizationDatamodel.Realization
	err := r.db.Where("branch_id = ? AND month = ? AND year = ?", branchID, month, year).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return realization.FromDataModel(&dm), nil
}

func (r *SyncRepository) CreateRealization(rec *realization.Realization) error {
	dm := realization.ToDataModel(rec)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*rec = *realization.FromDataModel(dm)
	return nil
}

func (r *SyncRepository) UpdateRealization(rec *realization.Realization) error {
	return r.db.Save(realization.ToDataModel(rec)).Error
}

func (r *SyncRepository) GetUserBranchID(userID int64) (*int64, error) {
	var u userDatamodel.User
	if err := r.db.Select("branch_id").First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u.BranchID, nil
}

func (r *SyncRepository) GetBranchName(branchID int64) (string, error) {
	var b userDatamodel.Branch
	if err := r.db.First(&b, branchID).Error; err != nil {
		return "", err
	}
	return b.Name, nil
}

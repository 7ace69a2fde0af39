package postgres

import (
	"time"

	proposalDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/proposal"
	"github.com/frahmantamala/training-management/internal/proposal"
	"gorm.io/gorm"
)

// ProposalRepository implements the proposal.Repository interface using GORM
type ProposalRepository struct {
	db *gorm.DB
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create saves a new proposal with its line items
func (r *ProposalRepository) Create(p *proposal.Proposal) error {
	dm := proposal.ToDataModel(p)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*p = *proposal.FromDataModel(dm)
	return nil
}

// GetByID retrieves a proposal including its line items
func (r *ProposalRepository) GetByID(id int64) (*proposal.Proposal, error) {
	dm, err := r.loadByID(r.db, id)
	if err != nil {
		return nil, err
	}
	return proposal.FromDataModel(dm), nil
}

func (r *ProposalRepository) GetByUserID(userID int64, limit, offset int) ([]*proposal.Proposal, error) {
	return r.list(r.db.Where("user_id = ?", userID), limit, offset)
}

func (r *ProposalRepository) GetByBranch(branchID int64, limit, offset int) ([]*proposal.Proposal, error) {
	return r.list(r.db.Where("branch_id = ?", branchID), limit, offset)
}

func (r *ProposalRepository) GetAll(limit, offset int) ([]*proposal.Proposal, error) {
	return r.list(r.db, limit, offset)
}

// GetByImplementationStatus is used by the backfill batch job.
func (r *ProposalRepository) GetByImplementationStatus(status string, limit, offset int) ([]*proposal.Proposal, error) {
	return r.list(r.db.Where("implementation_status = ?", status), limit, offset)
}

// UpdateTx runs a read-modify-write on one proposal row inside a transaction,
// replacing line items when mutate changed them.
func (r *ProposalRepository) UpdateTx(id int64, mutate func(p *proposal.Proposal) error) (*proposal.Proposal, error) {
	var result *proposal.Proposal

	err := r.db.Transaction(func(tx *gorm.DB) error {
		dm, err := r.loadByID(tx, id)
		if err != nil {
			return err
		}

		p := proposal.FromDataModel(dm)
		itemsBefore := len(p.Items)

		if err := mutate(p); err != nil {
			return err
		}
		p.ID = id

		updated := proposal.ToDataModel(p)

		if err := tx.Omit("Items").Save(updated).Error; err != nil {
			return err
		}

		// replace-all semantics for line items when the edit touched them
		if len(p.Items) != itemsBefore || itemsChanged(dm, updated) {
			if err := tx.Where("proposal_id = ?", id).Delete(&proposalDatamodel.ProposalItem{}).Error; err != nil {
				return err
			}
			for i := range updated.Items {
				updated.Items[i].ID = 0
				updated.Items[i].ProposalID = id
			}
			if len(updated.Items) > 0 {
				if err := tx.Create(&updated.Items).Error; err != nil {
					return err
				}
			}
		}

		result = proposal.FromDataModel(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ReplaceItems swaps all line items of a proposal
func (r *ProposalRepository) ReplaceItems(proposalID int64, items []proposal.Item) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", proposalID).Delete(&proposalDatamodel.ProposalItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		p := &proposal.Proposal{ID: proposalID, Items: items}
		dm := proposal.ToDataModel(p)
		for i := range dm.Items {
			dm.Items[i].ID = 0
			dm.Items[i].ProposalID = proposalID
		}
		return tx.Create(&dm.Items).Error
	})
}

// Delete removes the proposal and its items
func (r *ProposalRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&proposalDatamodel.ProposalItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&proposalDatamodel.Proposal{}).Error
	})
}

func (r *ProposalRepository) loadByID(db *gorm.DB, id int64) (*proposalDatamodel.Proposal, error) {
	var dm proposalDatamodel.Proposal
	err := db.Preload("Items").Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &dm, nil
}

func (r *ProposalRepository) list(q *gorm.DB, limit, offset int) ([]*proposal.Proposal, error) {
	var dms []*proposalDatamodel.Proposal
	err := q.Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return proposal.FromDataModelSlice(dms), nil
}

// itemsChanged compares every content field; the scheduled date in particular
// decides which monthly realization bucket an item lands in after
// implementation, so a date-only edit must still trigger the item rewrite.
func itemsChanged(before, after *proposalDatamodel.Proposal) bool {
	if len(before.Items) != len(after.Items) {
		return true
	}
	for i := range before.Items {
		b, a := &before.Items[i], &after.Items[i]
		if b.Description != a.Description ||
			b.ParticipantCount != a.ParticipantCount ||
			b.DurationDays != a.DurationDays ||
			b.Level != a.Level ||
			b.BaseCost != a.BaseCost ||
			b.TransportCost != a.TransportCost ||
			b.LodgingCost != a.LodgingCost ||
			b.PerDiemCost != a.PerDiemCost ||
			b.TotalCost != a.TotalCost ||
			!sameDate(b.ScheduledDate, a.ScheduledDate) {
			return true
		}
	}
	return false
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

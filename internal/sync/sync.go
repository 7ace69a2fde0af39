// Package sync keeps the derived planning records in step with implemented
// proposals. When a proposal reaches SUDAH_IMPLEMENTASI the synchronizer
// creates the matching Draft TNA entry (once) and accumulates each scheduled
// line into the monthly per-branch realization rollup.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/training-management/internal/draft"
	"github.com/frahmantamala/training-management/internal/proposal"
	"github.com/frahmantamala/training-management/internal/realization"
)

// FallbackYear is used when a proposal carries no scheduled date at all, so
// the Draft TNA entry still lands in a concrete planning year.
const FallbackYear = 2026

// ReasonNoBranch is returned when neither the proposal nor its owner resolves
// to a branch; the synchronizer skips such proposals without error.
const ReasonNoBranch = "NO_BRANCH"

// DraftStore is the Draft TNA persistence the synchronizer needs.
type DraftStore interface {
	FindDraftByKey(description string, scheduledDate *time.Time, branchID int64) (*draft.Draft, error)
	CreateDraft(d *draft.Draft) error
}

// RealizationStore is the realization-rollup persistence the synchronizer needs.
type RealizationStore interface {
	FindRealizationBucket(branchID int64, month, year int) (*realization.Realization, error)
	CreateRealization(r *realization.Realization) error
	UpdateRealization(r *realization.Realization) error
}

// DirectoryReader resolves the fallback branch and the branch display name.
type DirectoryReader interface {
	GetUserBranchID(userID int64) (*int64, error)
	GetBranchName(branchID int64) (string, error)
}

// ProposalSource pages implemented proposals for the backfill batch.
type ProposalSource interface {
	GetByImplementationStatus(status string, limit, offset int) ([]*proposal.Proposal, error)
}

type Synchronizer struct {
	drafts       DraftStore
	realizations RealizationStore
	directory    DirectoryReader
	logger       *slog.Logger
}

func NewSynchronizer(drafts DraftStore, realizations RealizationStore, directory DirectoryReader, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		drafts:       drafts,
		realizations: realizations,
		directory:    directory,
		logger:       logger,
	}
}

// Sync creates the Draft TNA record for p if none exists for its
// (description, scheduled date, branch) key and folds every dated line item
// into the (branch, month, year) realization bucket. Realization failures on
// individual items are logged and do not abort the remaining items.
func (s *Synchronizer) Sync(ctx context.Context, p *proposal.Proposal) (proposal.SyncResult, error) {
	branchID, err := s.resolveBranch(p)
	if err != nil {
		return proposal.SyncResult{}, err
	}
	if branchID == nil {
		s.logger.WarnContext(ctx, "proposal has no resolvable branch, skipping sync",
			slog.Int64("proposal_id", p.ID))
		return proposal.SyncResult{Reason: ReasonNoBranch}, nil
	}

	rep := representative(p)

	created, err := s.syncDraft(ctx, p, rep, *branchID)
	if err != nil {
		return proposal.SyncResult{BranchID: *branchID}, err
	}

	s.syncRealizations(ctx, p, *branchID)

	return proposal.SyncResult{Created: created, BranchID: *branchID}, nil
}

// Backfill replays Sync over every already-implemented proposal. It returns
// how many proposals were processed and how many Draft TNA records that
// created; per-proposal failures are logged and skipped.
func (s *Synchronizer) Backfill(ctx context.Context, source ProposalSource) (processed, created int, err error) {
	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		page, err := source.GetByImplementationStatus(proposal.ImplementationDone, pageSize, offset)
		if err != nil {
			return processed, created, fmt.Errorf("list implemented proposals: %w", err)
		}
		if len(page) == 0 {
			return processed, created, nil
		}
		for _, p := range page {
			result, err := s.Sync(ctx, p)
			if err != nil {
				s.logger.ErrorContext(ctx, "backfill sync failed",
					slog.Int64("proposal_id", p.ID),
					slog.String("error", err.Error()))
				continue
			}
			processed++
			if result.Created {
				created++
			}
		}
		if len(page) < pageSize {
			return processed, created, nil
		}
	}
}

func (s *Synchronizer) resolveBranch(p *proposal.Proposal) (*int64, error) {
	if p.BranchID != nil {
		return p.BranchID, nil
	}
	branchID, err := s.directory.GetUserBranchID(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve owner branch: %w", err)
	}
	return branchID, nil
}

// representative picks the content that identifies the Draft TNA entry: the
// first line item when items exist, otherwise the proposal header.
func representative(p *proposal.Proposal) proposal.Item {
	if len(p.Items) > 0 {
		return p.Items[0]
	}
	return proposal.Item{
		Description:      p.Description,
		ScheduledDate:    p.ScheduledDate,
		ParticipantCount: p.ParticipantCount,
		DurationDays:     p.DurationDays,
		Level:            p.Level,
		BaseCost:         p.BaseCost,
		TransportCost:    p.TransportCost,
		LodgingCost:      p.LodgingCost,
		PerDiemCost:      p.PerDiemCost,
		TotalCost:        p.TotalCost,
	}
}

func (s *Synchronizer) syncDraft(ctx context.Context, p *proposal.Proposal, rep proposal.Item, branchID int64) (bool, error) {
	existing, err := s.drafts.FindDraftByKey(rep.Description, rep.ScheduledDate, branchID)
	if err != nil {
		return false, fmt.Errorf("lookup draft tna: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	year := FallbackYear
	if rep.ScheduledDate != nil {
		year = rep.ScheduledDate.Year()
	}

	d := &draft.Draft{
		Year:             year,
		BranchID:         branchID,
		DivisionID:       p.DivisionID,
		Description:      rep.Description,
		ScheduledDate:    rep.ScheduledDate,
		ParticipantCount: rep.ParticipantCount,
		DurationDays:     rep.DurationDays,
		Level:            rep.Level,
		BaseCost:         p.BaseCost,
		TransportCost:    p.TransportCost,
		LodgingCost:      p.LodgingCost,
		PerDiemCost:      p.PerDiemCost,
		TotalCost:        p.TotalCost,
		Status:           draft.StatusDraft,
		CreatedBy:        p.UserID,
	}
	if err := s.drafts.CreateDraft(d); err != nil {
		// A concurrent sync may have inserted the same key; the unique index
		// rejects ours, so re-check before treating it as a failure.
		if again, findErr := s.drafts.FindDraftByKey(rep.Description, rep.ScheduledDate, branchID); findErr == nil && again != nil {
			return false, nil
		}
		return false, fmt.Errorf("create draft tna: %w", err)
	}

	s.logger.InfoContext(ctx, "created draft tna from implemented proposal",
		slog.Int64("proposal_id", p.ID),
		slog.Int64("draft_id", d.ID),
		slog.Int64("branch_id", branchID))
	return true, nil
}

// syncRealizations folds every dated item (or the dated header when there are
// no items) into its monthly bucket. Undated entries carry no month and are
// skipped.
func (s *Synchronizer) syncRealizations(ctx context.Context, p *proposal.Proposal, branchID int64) {
	items := p.Items
	if len(items) == 0 {
		items = []proposal.Item{representative(p)}
	}

	for _, item := range items {
		if item.ScheduledDate == nil {
			continue
		}
		if err := s.accumulate(branchID, p.UserID, item); err != nil {
			s.logger.ErrorContext(ctx, "realization accumulation failed",
				slog.Int64("proposal_id", p.ID),
				slog.Int64("branch_id", branchID),
				slog.String("error", err.Error()))
		}
	}
}

func (s *Synchronizer) accumulate(branchID, createdBy int64, item proposal.Item) error {
	month := int(item.ScheduledDate.Month())
	year := item.ScheduledDate.Year()

	bucket, err := s.realizations.FindRealizationBucket(branchID, month, year)
	if err != nil {
		return fmt.Errorf("lookup realization bucket: %w", err)
	}
	if bucket == nil {
		venueName, err := s.directory.GetBranchName(branchID)
		if err != nil {
			venueName = ""
		}
		rec := &realization.Realization{
			BranchID:          branchID,
			VenueName:         venueName,
			Month:             month,
			Year:              year,
			ActivityCount:     1,
			TotalParticipants: item.ParticipantCount,
			TotalCost:         item.TotalCost,
			Notes:             item.Description,
			CreatedBy:         createdBy,
		}
		if err := s.realizations.CreateRealization(rec); err != nil {
			// Same race as drafts: re-read and fall through to the update path.
			if again, findErr := s.realizations.FindRealizationBucket(branchID, month, year); findErr == nil && again != nil {
				bucket = again
			} else {
				return fmt.Errorf("create realization: %w", err)
			}
		} else {
			return nil
		}
	}

	bucket.ActivityCount++
	bucket.TotalParticipants += item.ParticipantCount
	bucket.TotalCost += item.TotalCost
	if item.Description != "" {
		if bucket.Notes != "" {
			bucket.Notes += "\n"
		}
		bucket.Notes += item.Description
	}
	if err := s.realizations.UpdateRealization(bucket); err != nil {
		return fmt.Errorf("update realization: %w", err)
	}
	return nil
}

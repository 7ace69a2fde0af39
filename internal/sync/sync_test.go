package sync_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/training-management/internal/draft"
	"github.com/frahmantamala/training-management/internal/proposal"
	"github.com/frahmantamala/training-management/internal/realization"
	"github.com/frahmantamala/training-management/internal/sync"
)

func TestSynchronizer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Synchronizer Suite")
}

// Mock stores for testing
type mockDraftStore struct {
	drafts      []*draft.Draft
	createError error
	nextID      int64
}

func newMockDraftStore() *mockDraftStore {
	return &mockDraftStore{nextID: 1}
}

func (m *mockDraftStore) FindDraftByKey(description string, scheduledDate *time.Time, branchID int64) (*draft.Draft, error) {
	for _, d := range m.drafts {
		if d.Description != description || d.BranchID != branchID {
			continue
		}
		if d.ScheduledDate == nil && scheduledDate == nil {
			return d, nil
		}
		if d.ScheduledDate != nil && scheduledDate != nil && d.ScheduledDate.Equal(*scheduledDate) {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDraftStore) CreateDraft(d *draft.Draft) error {
	if m.createError != nil {
		return m.createError
	}
	d.ID = m.nextID
	m.nextID++
	m.drafts = append(m.drafts, d)
	return nil
}

type mockRealizationStore struct {
	buckets     []*realization.Realization
	createError error
	updateError error
	nextID      int64
}

func newMockRealizationStore() *mockRealizationStore {
	return &mockRealizationStore{nextID: 1}
}

func (m *mockRealizationStore) FindRealizationBucket(branchID int64, month, year int) (*realization.Realization, error) {
	for _, b := range m.buckets {
		if b.BranchID == branchID && b.Month == month && b.Year == year {
			return b, nil
		}
	}
	return nil, nil
}

func (m *mockRealizationStore) CreateRealization(r *realization.Realization) error {
	if m.createError != nil {
		return m.createError
	}
	r.ID = m.nextID
	m.nextID++
	m.buckets = append(m.buckets, r)
	return nil
}

func (m *mockRealizationStore) UpdateRealization(r *realization.Realization) error {
	return m.updateError
}

type mockDirectory struct {
	userBranches map[int64]*int64
	branchNames  map[int64]string
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		userBranches: make(map[int64]*int64),
		branchNames:  make(map[int64]string),
	}
}

func (m *mockDirectory) GetUserBranchID(userID int64) (*int64, error) {
	return m.userBranches[userID], nil
}

func (m *mockDirectory) GetBranchName(branchID int64) (string, error) {
	name, ok := m.branchNames[branchID]
	if !ok {
		return "", errors.New("branch not found")
	}
	return name, nil
}

type mockProposalSource struct {
	proposals []*proposal.Proposal
	listError error
}

func (m *mockProposalSource) GetByImplementationStatus(status string, limit, offset int) ([]*proposal.Proposal, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	if offset >= len(m.proposals) {
		return []*proposal.Proposal{}, nil
	}
	end := offset + limit
	if end > len(m.proposals) {
		end = len(m.proposals)
	}
	return m.proposals[offset:end], nil
}

func int64Ptr(v int64) *int64 { return &v }

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

var _ = Describe("Synchronizer", func() {
	var (
		synchronizer *sync.Synchronizer
		drafts       *mockDraftStore
		realizations *mockRealizationStore
		directory    *mockDirectory
		ctx          context.Context
	)

	BeforeEach(func() {
		drafts = newMockDraftStore()
		realizations = newMockRealizationStore()
		directory = newMockDirectory()
		directory.branchNames[7] = "Bandung Branch"
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		synchronizer = sync.NewSynchronizer(drafts, realizations, directory, logger)
		ctx = context.Background()
	})

	implementedProposal := func() *proposal.Proposal {
		return &proposal.Proposal{
			ID:               42,
			UserID:           5,
			BranchID:         int64Ptr(7),
			Description:      "Leadership fundamentals",
			ScheduledDate:    datePtr(2026, time.March, 10),
			ParticipantCount: 12,
			DurationDays:     3,
			Level:            proposal.LevelStructural,
			BaseCost:         4_000_000,
			TransportCost:    1_000_000,
			LodgingCost:      500_000,
			PerDiemCost:      500_000,
			TotalCost:        6_000_000,
			Status:           proposal.StatusApproveAdmin,
		}
	}

	Describe("Sync", func() {
		Context("when no draft TNA exists for the proposal", func() {
			It("should create one and report created", func() {
				result, err := synchronizer.Sync(ctx, implementedProposal())

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Created).To(BeTrue())
				Expect(result.BranchID).To(Equal(int64(7)))
				Expect(drafts.drafts).To(HaveLen(1))

				d := drafts.drafts[0]
				Expect(d.Description).To(Equal("Leadership fundamentals"))
				Expect(d.BranchID).To(Equal(int64(7)))
				Expect(d.Year).To(Equal(2026))
				Expect(d.Status).To(Equal(draft.StatusDraft))
				Expect(d.CreatedBy).To(Equal(int64(5)))
				Expect(d.TotalCost).To(Equal(int64(6_000_000)))
			})
		})

		Context("when a draft TNA already exists for the same key", func() {
			It("should not create a second one", func() {
				_, err := synchronizer.Sync(ctx, implementedProposal())
				Expect(err).ToNot(HaveOccurred())

				result, err := synchronizer.Sync(ctx, implementedProposal())
				Expect(err).ToNot(HaveOccurred())
				Expect(result.Created).To(BeFalse())
				Expect(drafts.drafts).To(HaveLen(1))
			})

			It("should still accumulate the realization bucket", func() {
				_, err := synchronizer.Sync(ctx, implementedProposal())
				Expect(err).ToNot(HaveOccurred())
				_, err = synchronizer.Sync(ctx, implementedProposal())
				Expect(err).ToNot(HaveOccurred())

				Expect(realizations.buckets).To(HaveLen(1))
				Expect(realizations.buckets[0].ActivityCount).To(Equal(2))
				Expect(realizations.buckets[0].TotalParticipants).To(Equal(24))
				Expect(realizations.buckets[0].TotalCost).To(Equal(int64(12_000_000)))
			})
		})

		Context("when the proposal has line items", func() {
			It("should key the draft on the first item and bucket each dated item", func() {
				p := implementedProposal()
				p.Items = []proposal.Item{
					{
						Description:      "Negotiation workshop",
						ScheduledDate:    datePtr(2026, time.April, 2),
						ParticipantCount: 8,
						TotalCost:        2_000_000,
					},
					{
						Description:      "Public speaking",
						ScheduledDate:    datePtr(2026, time.April, 20),
						ParticipantCount: 10,
						TotalCost:        1_500_000,
					},
					{
						Description:      "Undated onboarding",
						ParticipantCount: 4,
						TotalCost:        500_000,
					},
				}

				result, err := synchronizer.Sync(ctx, p)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Created).To(BeTrue())
				Expect(drafts.drafts).To(HaveLen(1))
				Expect(drafts.drafts[0].Description).To(Equal("Negotiation workshop"))

				// Both April items share one bucket; the undated item is skipped.
				Expect(realizations.buckets).To(HaveLen(1))
				bucket := realizations.buckets[0]
				Expect(bucket.Month).To(Equal(4))
				Expect(bucket.Year).To(Equal(2026))
				Expect(bucket.ActivityCount).To(Equal(2))
				Expect(bucket.TotalParticipants).To(Equal(18))
				Expect(bucket.TotalCost).To(Equal(int64(3_500_000)))
				Expect(bucket.Notes).To(Equal("Negotiation workshop\nPublic speaking"))
			})
		})

		Context("when creating a new realization bucket", func() {
			It("should use the branch display name as the venue", func() {
				_, err := synchronizer.Sync(ctx, implementedProposal())

				Expect(err).ToNot(HaveOccurred())
				Expect(realizations.buckets).To(HaveLen(1))
				Expect(realizations.buckets[0].VenueName).To(Equal("Bandung Branch"))
			})

			It("should record the proposal owner as the creator", func() {
				_, err := synchronizer.Sync(ctx, implementedProposal())

				Expect(err).ToNot(HaveOccurred())
				Expect(realizations.buckets).To(HaveLen(1))
				Expect(realizations.buckets[0].CreatedBy).To(Equal(int64(5)))
			})
		})

		Context("when the proposal has no scheduled date", func() {
			It("should fall back to the default planning year and skip realizations", func() {
				p := implementedProposal()
				p.ScheduledDate = nil

				result, err := synchronizer.Sync(ctx, p)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Created).To(BeTrue())
				Expect(drafts.drafts[0].Year).To(Equal(sync.FallbackYear))
				Expect(realizations.buckets).To(BeEmpty())
			})
		})

		Context("when the proposal has no branch", func() {
			It("should fall back to the owner's branch", func() {
				p := implementedProposal()
				p.BranchID = nil
				directory.userBranches[5] = int64Ptr(7)

				result, err := synchronizer.Sync(ctx, p)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Created).To(BeTrue())
				Expect(result.BranchID).To(Equal(int64(7)))
			})

			It("should skip with a NO_BRANCH reason when the owner has none either", func() {
				p := implementedProposal()
				p.BranchID = nil

				result, err := synchronizer.Sync(ctx, p)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Created).To(BeFalse())
				Expect(result.Reason).To(Equal(sync.ReasonNoBranch))
				Expect(drafts.drafts).To(BeEmpty())
				Expect(realizations.buckets).To(BeEmpty())
			})
		})

		Context("when the draft insert fails and no concurrent row appears", func() {
			It("should return the error", func() {
				drafts.createError = errors.New("connection reset")

				_, err := synchronizer.Sync(ctx, implementedProposal())

				Expect(err).To(HaveOccurred())
			})
		})

		Context("when realization persistence fails", func() {
			It("should not fail the sync", func() {
				realizations.createError = errors.New("connection reset")

				result, err := synchronizer.Sync(ctx, implementedProposal())

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Created).To(BeTrue())
			})
		})
	})

	Describe("Backfill", func() {
		It("should sync every implemented proposal and count created drafts", func() {
			source := &mockProposalSource{}
			for i := 0; i < 3; i++ {
				p := implementedProposal()
				p.ID = int64(100 + i)
				p.Description = fmt.Sprintf("Course %d", i)
				source.proposals = append(source.proposals, p)
			}
			// A duplicate of the first: processed but not created.
			dup := implementedProposal()
			dup.ID = 200
			dup.Description = "Course 0"
			source.proposals = append(source.proposals, dup)

			processed, created, err := synchronizer.Backfill(ctx, source)

			Expect(err).ToNot(HaveOccurred())
			Expect(processed).To(Equal(4))
			Expect(created).To(Equal(3))
			Expect(drafts.drafts).To(HaveLen(3))
		})

		It("should propagate listing errors", func() {
			source := &mockProposalSource{listError: errors.New("db down")}

			_, _, err := synchronizer.Backfill(ctx, source)

			Expect(err).To(HaveOccurred())
		})
	})
})

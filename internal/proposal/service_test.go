package proposal_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/internal/proposal"
)

func TestProposal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Proposal Suite")
}

type mockRepository struct {
	proposals map[int64]*proposal.Proposal
	nextID    int64

	createErr error
	updateErr error
	deleteErr error

	// beforeUpdate runs at the start of UpdateTx, standing in for writes a
	// concurrent caller committed after the service's initial read.
	beforeUpdate func()
}

func newMockRepository() *mockRepository {
	return &mockRepository{proposals: make(map[int64]*proposal.Proposal), nextID: 1}
}

func (m *mockRepository) Create(p *proposal.Proposal) error {
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = m.nextID
	m.nextID++
	copied := *p
	m.proposals[p.ID] = &copied
	return nil
}

func (m *mockRepository) GetByID(id int64) (*proposal.Proposal, error) {
	p, ok := m.proposals[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) GetByUserID(userID int64, limit, offset int) ([]*proposal.Proposal, error) {
	var result []*proposal.Proposal
	for _, p := range m.proposals {
		if p.UserID == userID {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockRepository) GetByBranch(branchID int64, limit, offset int) ([]*proposal.Proposal, error) {
	var result []*proposal.Proposal
	for _, p := range m.proposals {
		if p.BranchID != nil && *p.BranchID == branchID {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockRepository) GetAll(limit, offset int) ([]*proposal.Proposal, error) {
	var result []*proposal.Proposal
	for _, p := range m.proposals {
		copied := *p
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockRepository) UpdateTx(id int64, mutate func(p *proposal.Proposal) error) (*proposal.Proposal, error) {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	p, ok := m.proposals[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *p
	if err := mutate(&copied); err != nil {
		return nil, err
	}
	m.proposals[id] = &copied
	returned := copied
	return &returned, nil
}

func (m *mockRepository) ReplaceItems(proposalID int64, items []proposal.Item) error {
	return nil
}

func (m *mockRepository) Delete(id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.proposals, id)
	return nil
}

type notifierCall struct {
	kind     string
	revision bool
	reason   string
}

type mockNotifier struct {
	calls []notifierCall
	err   error
}

func (m *mockNotifier) ProposalSubmitted(ctx context.Context, p *proposal.Proposal, revision bool) error {
	m.calls = append(m.calls, notifierCall{kind: "submitted", revision: revision})
	return m.err
}

func (m *mockNotifier) AdminApproved(ctx context.Context, p *proposal.Proposal) error {
	m.calls = append(m.calls, notifierCall{kind: "admin_approved"})
	return m.err
}

func (m *mockNotifier) SuperadminApproved(ctx context.Context, p *proposal.Proposal) error {
	m.calls = append(m.calls, notifierCall{kind: "superadmin_approved"})
	return m.err
}

func (m *mockNotifier) ConfirmedToOwner(ctx context.Context, p *proposal.Proposal) error {
	m.calls = append(m.calls, notifierCall{kind: "confirmed"})
	return m.err
}

func (m *mockNotifier) RejectedByAdmin(ctx context.Context, p *proposal.Proposal, reason string) error {
	m.calls = append(m.calls, notifierCall{kind: "rejected_admin", reason: reason})
	return m.err
}

func (m *mockNotifier) RejectedBySuperadmin(ctx context.Context, p *proposal.Proposal, reason string) error {
	m.calls = append(m.calls, notifierCall{kind: "rejected_superadmin", reason: reason})
	return m.err
}

func (m *mockNotifier) kinds() []string {
	var kinds []string
	for _, c := range m.calls {
		kinds = append(kinds, c.kind)
	}
	return kinds
}

type mockSyncer struct {
	calls  int
	lastID int64
	result proposal.SyncResult
	err    error
}

func (m *mockSyncer) Sync(ctx context.Context, p *proposal.Proposal) (proposal.SyncResult, error) {
	m.calls++
	m.lastID = p.ID
	return m.result, m.err
}

type capturingBus struct {
	events []events.Event
}

func (b *capturingBus) Publish(ctx context.Context, event events.Event) error {
	b.events = append(b.events, event)
	return nil
}

var _ = Describe("ProposalService", func() {
	var (
		repo     *mockRepository
		notifier *mockNotifier
		syncer   *mockSyncer
		bus      *capturingBus
		service  *proposal.Service
		ctx      context.Context

		branchID int64
		owner    *auth.Actor
		admin    *auth.Actor
		super    *auth.Actor
	)

	BeforeEach(func() {
		repo = newMockRepository()
		notifier = &mockNotifier{}
		syncer = &mockSyncer{}
		bus = &capturingBus{}
		ctx = context.Background()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = proposal.NewService(repo, notifier, syncer, bus, logger)

		branchID = int64(7)
		owner = &auth.Actor{UserID: 1, Name: "Sari", Role: auth.RoleUser, BranchID: &branchID}
		admin = &auth.Actor{UserID: 2, Name: "Budi", Role: auth.RoleAdmin, BranchID: &branchID}
		super = &auth.Actor{UserID: 3, Name: "Agus", Role: auth.RoleSuperadmin}
	})

	submit := func() *proposal.Proposal {
		p, err := service.Submit(ctx, owner, proposal.CreateProposalDTO{
			Description:      "Leadership training",
			ParticipantCount: 12,
			DurationDays:     2,
			Level:            proposal.LevelStructural,
			BaseCost:         5_000_000,
			TransportCost:    1_000_000,
		})
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	transition := func(actor *auth.Actor, id int64, status, reason string) (*proposal.Proposal, error) {
		return service.UpdateStatus(ctx, actor, id, proposal.UpdateStatusDTO{Status: status, Reason: reason})
	}

	Describe("Submit", func() {
		It("creates the proposal as MENUNGGU with inherited branch and summed cost", func() {
			p := submit()

			Expect(p.Status).To(Equal(proposal.StatusMenunggu))
			Expect(p.BranchID).To(HaveValue(Equal(branchID)))
			Expect(p.UserID).To(Equal(owner.UserID))
			Expect(p.TotalCost).To(Equal(int64(6_000_000)))
			Expect(notifier.kinds()).To(Equal([]string{"submitted"}))
			Expect(notifier.calls[0].revision).To(BeFalse())
		})

		It("derives header values from line items when present", func() {
			date := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
			p, err := service.Submit(ctx, owner, proposal.CreateProposalDTO{
				Description: "Q2 training batch",
				Items: []proposal.ItemDTO{
					{Description: "Negotiation", ScheduledDate: &date, ParticipantCount: 8, BaseCost: 2_000_000},
					{Description: "Public speaking", ParticipantCount: 10, BaseCost: 3_000_000, TransportCost: 500_000},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(p.TotalCost).To(Equal(int64(5_500_000)))
			Expect(p.BaseCost).To(Equal(int64(5_000_000)))
			Expect(p.ParticipantCount).To(Equal(8))
			Expect(p.ScheduledDate).To(HaveValue(Equal(date)))
			Expect(p.Items).To(HaveLen(2))
			Expect(p.Items[1].TotalCost).To(Equal(int64(3_500_000)))
		})

		It("rejects an empty description", func() {
			_, err := service.Submit(ctx, owner, proposal.CreateProposalDTO{})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects an unknown training level", func() {
			_, err := service.Submit(ctx, owner, proposal.CreateProposalDTO{
				Description: "x",
				Level:       "NON_STRUKTURAL",
			})
			Expect(err).To(HaveOccurred())
		})

		It("still submits when notification fan-out fails", func() {
			notifier.err = errors.New("smtp down")
			p := submit()
			Expect(p.ID).NotTo(BeZero())
		})
	})

	Describe("approval chain", func() {
		It("walks the full chain: admin, superadmin, admin confirmation", func() {
			p := submit()

			p, err := transition(admin, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(proposal.StatusApproveAdmin))

			p, err = transition(super, p.ID, proposal.StatusApproveSuperadmin, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(proposal.StatusApproveSuperadmin))
			Expect(p.ImplementationStatus).To(BeNil())

			p, err = transition(admin, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(proposal.StatusApproveAdmin))
			Expect(p.ImplementationStatus).To(HaveValue(Equal(proposal.ImplementationPending)))

			Expect(notifier.kinds()).To(Equal([]string{"submitted", "admin_approved", "superadmin_approved", "confirmed"}))
		})

		It("publishes a status-changed event per transition", func() {
			p := submit()
			_, err := transition(admin, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())

			Expect(bus.events).To(HaveLen(1))
			ev, ok := bus.events[0].(*events.ProposalStatusChangedEvent)
			Expect(ok).To(BeTrue())
			Expect(ev.FromStatus).To(Equal(proposal.StatusMenunggu))
			Expect(ev.ToStatus).To(Equal(proposal.StatusApproveAdmin))
		})

		It("never lets a plain user change status", func() {
			p := submit()
			_, err := transition(owner, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).To(MatchError(internal.ErrRoleForbidden))
		})

		It("stops a superadmin approving before the admin tier", func() {
			p := submit()
			_, err := transition(super, p.ID, proposal.StatusApproveSuperadmin, "")
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTransition))
		})

		It("stops an admin re-approving an already forwarded proposal", func() {
			p := submit()
			_, err := transition(admin, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())

			_, err = transition(admin, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).To(HaveOccurred())
		})

		It("leaves the status untouched when the transition is illegal", func() {
			p := submit()
			_, _ = transition(super, p.ID, proposal.StatusApproveSuperadmin, "")

			stored, err := repo.GetByID(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(proposal.StatusMenunggu))
		})
	})

	Describe("rejection", func() {
		It("admin rejects a pending proposal with a reason", func() {
			p := submit()

			p, err := transition(admin, p.ID, proposal.StatusDitolak, "budget exceeded")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(proposal.StatusDitolak))
			Expect(p.RejectionReason).To(HaveValue(Equal("budget exceeded")))
			Expect(notifier.kinds()).To(ContainElement("rejected_admin"))
		})

		It("superadmin rejects after admin approval", func() {
			p := submit()
			_, err := transition(admin, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())

			p, err = transition(super, p.ID, proposal.StatusDitolak, "wrong vendor")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(proposal.StatusDitolak))
			Expect(notifier.kinds()).To(ContainElement("rejected_superadmin"))
		})

		It("requires a reason to reject", func() {
			p := submit()
			_, err := transition(admin, p.ID, proposal.StatusDitolak, "")
			Expect(err).To(MatchError(internal.ErrReasonRequired))

			stored, _ := repo.GetByID(p.ID)
			Expect(stored.Status).To(Equal(proposal.StatusMenunggu))
		})
	})

	Describe("revision loop", func() {
		It("editing a rejected proposal re-submits it as a revision", func() {
			p := submit()
			_, err := transition(admin, p.ID, proposal.StatusDitolak, "too expensive")
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.Update(ctx, owner, p.ID, proposal.UpdateProposalDTO{
				Description: "Leadership training, trimmed",
				BaseCost:    3_000_000,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.Status).To(Equal(proposal.StatusMenunggu))
			Expect(updated.RejectionReason).To(BeNil())
			Expect(updated.IsRevision).To(BeTrue())
			Expect(updated.OriginalProposalID).To(HaveValue(Equal(p.ID)))

			last := notifier.calls[len(notifier.calls)-1]
			Expect(last.kind).To(Equal("submitted"))
			Expect(last.revision).To(BeTrue())
		})

		It("editing a pending proposal recalculates totals without the revision flag", func() {
			p := submit()

			updated, err := service.Update(ctx, owner, p.ID, proposal.UpdateProposalDTO{
				Description: "Leadership training",
				BaseCost:    2_000_000,
				PerDiemCost: 250_000,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.TotalCost).To(Equal(int64(2_250_000)))
			Expect(updated.IsRevision).To(BeFalse())
		})

		It("only the owner may edit", func() {
			p := submit()
			_, err := service.Update(ctx, admin, p.ID, proposal.UpdateProposalDTO{Description: "x"})
			Expect(err).To(MatchError(internal.ErrNotProposalOwner))
		})

		It("refuses edits once the chain has started", func() {
			p := submit()
			_, err := transition(admin, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(ctx, owner, p.ID, proposal.UpdateProposalDTO{Description: "x"})
			Expect(err).To(MatchError(internal.ErrProposalNotEditable))
		})
	})

	Describe("implementation sub-state", func() {
		var approved *proposal.Proposal

		BeforeEach(func() {
			approved = submit()
			var err error
			_, err = transition(admin, approved.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = transition(super, approved.ID, proposal.StatusApproveSuperadmin, "")
			Expect(err).NotTo(HaveOccurred())
			approved, err = transition(admin, approved.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("marks SUDAH_IMPLEMENTASI, records the evaluation and runs the synchronizer", func() {
			syncer.result = proposal.SyncResult{Created: true, BranchID: branchID}

			p, err := service.UpdateImplementation(ctx, owner, approved.ID, proposal.UpdateImplementationDTO{
				ImplementationStatus: proposal.ImplementationDone,
				Evaluation:           "well attended",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ImplementationStatus).To(HaveValue(Equal(proposal.ImplementationDone)))
			Expect(p.RealizationEvaluation).To(HaveValue(Equal("well attended")))
			Expect(syncer.calls).To(Equal(1))
			Expect(syncer.lastID).To(Equal(approved.ID))
		})

		It("is idempotent: repeating SUDAH_IMPLEMENTASI does not re-sync", func() {
			_, err := service.UpdateImplementation(ctx, owner, approved.ID, proposal.UpdateImplementationDTO{
				ImplementationStatus: proposal.ImplementationDone,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateImplementation(ctx, owner, approved.ID, proposal.UpdateImplementationDTO{
				ImplementationStatus: proposal.ImplementationDone,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(syncer.calls).To(Equal(1))
		})

		It("does not re-sync when a concurrent caller already implemented it", func() {
			repo.beforeUpdate = func() {
				repo.beforeUpdate = nil
				done := proposal.ImplementationDone
				repo.proposals[approved.ID].ImplementationStatus = &done
			}

			p, err := service.UpdateImplementation(ctx, owner, approved.ID, proposal.UpdateImplementationDTO{
				ImplementationStatus: proposal.ImplementationDone,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ImplementationStatus).To(HaveValue(Equal(proposal.ImplementationDone)))
			Expect(syncer.calls).To(BeZero())
		})

		It("never reverts SUDAH_IMPLEMENTASI to BELUM_IMPLEMENTASI", func() {
			_, err := service.UpdateImplementation(ctx, owner, approved.ID, proposal.UpdateImplementationDTO{
				ImplementationStatus: proposal.ImplementationDone,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateImplementation(ctx, owner, approved.ID, proposal.UpdateImplementationDTO{
				ImplementationStatus: proposal.ImplementationPending,
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects the sub-state on a proposal that is not approved", func() {
			pending := submit()
			_, err := service.UpdateImplementation(ctx, owner, pending.ID, proposal.UpdateImplementationDTO{
				ImplementationStatus: proposal.ImplementationDone,
			})
			Expect(err).To(HaveOccurred())
		})

		It("keeps the implementation status when the synchronizer fails", func() {
			syncer.err = errors.New("db gone")

			p, err := service.UpdateImplementation(ctx, owner, approved.ID, proposal.UpdateImplementationDTO{
				ImplementationStatus: proposal.ImplementationDone,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ImplementationStatus).To(HaveValue(Equal(proposal.ImplementationDone)))
		})

		It("forbids a non-owner plain user", func() {
			stranger := &auth.Actor{UserID: 99, Role: auth.RoleUser}
			_, err := service.UpdateImplementation(ctx, stranger, approved.ID, proposal.UpdateImplementationDTO{
				ImplementationStatus: proposal.ImplementationDone,
			})
			Expect(err).To(MatchError(internal.ErrNotProposalOwner))
		})
	})

	Describe("read access", func() {
		It("scopes visibility by role", func() {
			p := submit()

			_, err := service.GetByID(owner, p.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetByID(admin, p.ID)
			Expect(err).NotTo(HaveOccurred())

			otherBranch := int64(99)
			outsider := &auth.Actor{UserID: 50, Role: auth.RoleAdmin, BranchID: &otherBranch}
			_, err = service.GetByID(outsider, p.ID)
			Expect(err).To(MatchError(internal.ErrNotProposalOwner))

			_, err = service.GetByID(super, p.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns not found for a missing proposal", func() {
			_, err := service.GetByID(owner, 404)
			Expect(err).To(MatchError(internal.ErrProposalNotFound))
		})

		It("lists by owner, branch, and globally", func() {
			submit()
			otherBranch := int64(99)
			otherOwner := &auth.Actor{UserID: 42, Role: auth.RoleUser, BranchID: &otherBranch}
			_, err := service.Submit(ctx, otherOwner, proposal.CreateProposalDTO{Description: "Other branch training"})
			Expect(err).NotTo(HaveOccurred())

			mine, err := service.List(owner, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			branch, err := service.List(admin, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(branch).To(HaveLen(1))

			all, err := service.List(super, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})

	Describe("Delete", func() {
		It("lets the owner delete while still editable", func() {
			p := submit()
			Expect(service.Delete(owner, p.ID)).To(Succeed())
			_, err := repo.GetByID(p.ID)
			Expect(err).To(HaveOccurred())
		})

		It("refuses the owner once processing started", func() {
			p := submit()
			_, err := transition(admin, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(owner, p.ID)).To(MatchError(internal.ErrProposalNotEditable))
		})

		It("lets privileged roles delete regardless of status", func() {
			p := submit()
			_, err := transition(admin, p.ID, proposal.StatusApproveAdmin, "")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(super, p.ID)).To(Succeed())
		})

		It("refuses a non-owner plain user", func() {
			p := submit()
			stranger := &auth.Actor{UserID: 99, Role: auth.RoleUser}
			Expect(service.Delete(stranger, p.ID)).To(MatchError(internal.ErrNotProposalOwner))
		})
	})
})

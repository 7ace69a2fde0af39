package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/gomail.v2"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/internal/draft"
	"github.com/frahmantamala/training-management/internal/notification"
	"github.com/frahmantamala/training-management/internal/proposal"
)

func TestNotificationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "NotificationService Suite")
}

// Mock repository for testing
type mockNotificationRepository struct {
	notifications []*notification.Notification
	createError   error
	nextID        int64
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{nextID: 1}
}

func (m *mockNotificationRepository) Create(n *notification.Notification) error {
	if m.createError != nil {
		return m.createError
	}
	n.ID = m.nextID
	m.nextID++
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepository) GetByUserID(userID int64, limit, offset int) ([]*notification.Notification, error) {
	var result []*notification.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *mockNotificationRepository) GetByID(id int64) (*notification.Notification, error) {
	for _, n := range m.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, errors.New("notification not found")
}

func (m *mockNotificationRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepository) MarkRead(id int64) error {
	for _, n := range m.notifications {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(userID int64) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepository) Delete(id int64) error {
	for i, n := range m.notifications {
		if n.ID == id {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return nil
		}
	}
	return errors.New("notification not found")
}

type mockDirectory struct {
	adminsByBranch map[int64][]notification.Recipient
	superadmins    []notification.Recipient
	users          map[int64]notification.Recipient
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		adminsByBranch: make(map[int64][]notification.Recipient),
		users:          make(map[int64]notification.Recipient),
	}
}

func (m *mockDirectory) AdminsForBranch(branchID int64) ([]notification.Recipient, error) {
	return m.adminsByBranch[branchID], nil
}

func (m *mockDirectory) Superadmins() ([]notification.Recipient, error) {
	return m.superadmins, nil
}

func (m *mockDirectory) AllPrivileged() ([]notification.Recipient, error) {
	var all []notification.Recipient
	for _, admins := range m.adminsByBranch {
		all = append(all, admins...)
	}
	return append(all, m.superadmins...), nil
}

func (m *mockDirectory) UserByID(userID int64) (*notification.Recipient, error) {
	r, ok := m.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &r, nil
}

type capturingBus struct {
	published []events.Event
}

func (b *capturingBus) Publish(ctx context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

type capturingSender struct {
	messages  []*gomail.Message
	sendError error
}

func (s *capturingSender) DialAndSend(m ...*gomail.Message) error {
	if s.sendError != nil {
		return s.sendError
	}
	s.messages = append(s.messages, m...)
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

func actorWithID(id int64) *auth.Actor {
	return &auth.Actor{UserID: id, Role: auth.RoleUser}
}

var _ = Describe("NotificationService", func() {
	var (
		service   *notification.Service
		repo      *mockNotificationRepository
		directory *mockDirectory
		bus       *capturingBus
		ctx       context.Context
	)

	recipientIDs := func() []int64 {
		ids := make([]int64, len(repo.notifications))
		for i, n := range repo.notifications {
			ids[i] = n.UserID
		}
		return ids
	}

	BeforeEach(func() {
		repo = newMockNotificationRepository()
		directory = newMockDirectory()
		bus = &capturingBus{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = notification.NewService(repo, directory, bus, logger)
		ctx = context.Background()

		directory.adminsByBranch[7] = []notification.Recipient{
			{UserID: 20, Name: "Branch Admin", Email: "admin@corp.test"},
		}
		directory.superadmins = []notification.Recipient{
			{UserID: 30, Name: "Super One", Email: "super1@corp.test"},
			{UserID: 31, Name: "Super Two", Email: "super2@corp.test"},
		}
		directory.users[5] = notification.Recipient{UserID: 5, Name: "Proposer", Email: "owner@corp.test"}
	})

	sampleProposal := func() *proposal.Proposal {
		return &proposal.Proposal{
			ID:          42,
			UserID:      5,
			BranchID:    int64Ptr(7),
			Description: "Leadership fundamentals",
		}
	}

	Describe("ProposalSubmitted", func() {
		It("should notify the branch admins", func() {
			err := service.ProposalSubmitted(ctx, sampleProposal(), false)

			Expect(err).ToNot(HaveOccurred())
			Expect(recipientIDs()).To(ConsistOf(int64(20)))
			Expect(repo.notifications[0].Type).To(Equal(notification.TypeProposalSubmitted))
			Expect(*repo.notifications[0].ProposalID).To(Equal(int64(42)))
		})

		It("should also notify superadmins for a revision", func() {
			err := service.ProposalSubmitted(ctx, sampleProposal(), true)

			Expect(err).ToNot(HaveOccurred())
			Expect(recipientIDs()).To(ConsistOf(int64(20), int64(30), int64(31)))
		})

		It("should notify nobody when the proposal has no branch", func() {
			p := sampleProposal()
			p.BranchID = nil

			err := service.ProposalSubmitted(ctx, p, false)

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.notifications).To(BeEmpty())
		})
	})

	Describe("AdminApproved", func() {
		It("should notify all superadmins", func() {
			err := service.AdminApproved(ctx, sampleProposal())

			Expect(err).ToNot(HaveOccurred())
			Expect(recipientIDs()).To(ConsistOf(int64(30), int64(31)))
			for _, n := range repo.notifications {
				Expect(n.Type).To(Equal(notification.TypeApproveAdmin))
			}
		})
	})

	Describe("SuperadminApproved", func() {
		It("should notify the branch admins", func() {
			err := service.SuperadminApproved(ctx, sampleProposal())

			Expect(err).ToNot(HaveOccurred())
			Expect(recipientIDs()).To(ConsistOf(int64(20)))
			Expect(repo.notifications[0].Type).To(Equal(notification.TypeApproveSuperadmin))
		})
	})

	Describe("ConfirmedToOwner", func() {
		It("should notify only the owner", func() {
			err := service.ConfirmedToOwner(ctx, sampleProposal())

			Expect(err).ToNot(HaveOccurred())
			Expect(recipientIDs()).To(ConsistOf(int64(5)))
			Expect(repo.notifications[0].Type).To(Equal(notification.TypeApproveAdmin))
		})
	})

	Describe("RejectedByAdmin", func() {
		It("should notify the owner with the reason in the body", func() {
			err := service.RejectedByAdmin(ctx, sampleProposal(), "budget exceeded")

			Expect(err).ToNot(HaveOccurred())
			Expect(recipientIDs()).To(ConsistOf(int64(5)))
			Expect(repo.notifications[0].Type).To(Equal(notification.TypeRejectAdmin))
			Expect(repo.notifications[0].Body).To(ContainSubstring("budget exceeded"))
		})
	})

	Describe("RejectedBySuperadmin", func() {
		It("should use the superadmin rejection type", func() {
			err := service.RejectedBySuperadmin(ctx, sampleProposal(), "duplicate program")

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.notifications[0].Type).To(Equal(notification.TypeRejectSuperadmin))
		})
	})

	Describe("DraftSubmitted", func() {
		It("should notify every admin and superadmin", func() {
			d := &draft.Draft{ID: 9, Year: 2026, BranchID: 7, Description: "Planned trainings"}

			err := service.DraftSubmitted(ctx, d)

			Expect(err).ToNot(HaveOccurred())
			Expect(recipientIDs()).To(ConsistOf(int64(20), int64(30), int64(31)))
			Expect(repo.notifications[0].Type).To(Equal(notification.TypeDraftTNASubmitted))
			Expect(*repo.notifications[0].DraftID).To(Equal(int64(9)))
		})
	})

	Describe("event publishing", func() {
		It("should publish one created event per written notification", func() {
			err := service.AdminApproved(ctx, sampleProposal())

			Expect(err).ToNot(HaveOccurred())
			Expect(bus.published).To(HaveLen(2))
			Expect(bus.published[0].EventType()).To(Equal(events.EventTypeNotificationCreated))
		})
	})

	Describe("inbox operations", func() {
		var actor5 = actorWithID(5)

		BeforeEach(func() {
			Expect(service.RejectedByAdmin(ctx, sampleProposal(), "fix the costs")).To(Succeed())
			Expect(service.ConfirmedToOwner(ctx, sampleProposal())).To(Succeed())
		})

		It("should list the actor's notifications", func() {
			items, err := service.ListForUser(ctx, actor5, 20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(items).To(HaveLen(2))
		})

		It("should count and clear unread notifications", func() {
			count, err := service.CountUnread(ctx, actor5)
			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(int64(2)))

			Expect(service.MarkAllRead(ctx, actor5)).To(Succeed())

			count, err = service.CountUnread(ctx, actor5)
			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("should refuse to mark another user's notification", func() {
			err := service.MarkRead(ctx, actorWithID(99), repo.notifications[0].ID)

			Expect(err).To(HaveOccurred())
		})

		It("should delete only the actor's own notification", func() {
			Expect(service.Delete(ctx, actor5, repo.notifications[0].ID)).To(Succeed())
			Expect(repo.notifications).To(HaveLen(1))

			err := service.Delete(ctx, actorWithID(99), repo.notifications[0].ID)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Mailer", func() {
	var (
		mailer    *notification.Mailer
		sender    *capturingSender
		directory *mockDirectory
		ctx       context.Context
	)

	BeforeEach(func() {
		sender = &capturingSender{}
		directory = newMockDirectory()
		directory.users[5] = notification.Recipient{UserID: 5, Name: "Proposer", Email: "owner@corp.test"}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mailer = notification.NewMailerWithSender(sender, "noreply@corp.test", directory, logger)
		ctx = context.Background()
	})

	It("should send an email copy of the notification", func() {
		event := events.NewNotificationCreatedEvent(1, 5, notification.TypeRejectAdmin, "Training proposal rejected", "Please revise.")

		err := mailer.HandleNotificationCreated(ctx, event)

		Expect(err).ToNot(HaveOccurred())
		Expect(sender.messages).To(HaveLen(1))
		Expect(sender.messages[0].GetHeader("To")).To(ConsistOf("owner@corp.test"))
		Expect(sender.messages[0].GetHeader("Subject")).To(ConsistOf("Training proposal rejected"))
	})

	It("should skip recipients without an email address", func() {
		directory.users[6] = notification.Recipient{UserID: 6, Name: "No Mail"}
		event := events.NewNotificationCreatedEvent(2, 6, notification.TypeApproveAdmin, "t", "b")

		err := mailer.HandleNotificationCreated(ctx, event)

		Expect(err).ToNot(HaveOccurred())
		Expect(sender.messages).To(BeEmpty())
	})

	It("should surface SMTP failures to the bus", func() {
		sender.sendError = errors.New("connection refused")
		event := events.NewNotificationCreatedEvent(3, 5, notification.TypeApproveAdmin, "t", "b")

		err := mailer.HandleNotificationCreated(ctx, event)

		Expect(err).To(HaveOccurred())
	})
})

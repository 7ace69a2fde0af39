package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	userDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/user"
	"github.com/frahmantamala/training-management/internal/draft"
	"github.com/frahmantamala/training-management/internal/realization"
)

func TestSyncRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SyncRepository Suite")
}

var _ = Describe("SyncRepository", func() {
	var (
		db   *gorm.DB
		repo *SyncRepository
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared&_foreign_keys=on"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Exec(testSchema).Error).NotTo(HaveOccurred())

		repo = NewSyncRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("draft lookup", func() {
		It("finds a draft by its dedup key", func() {
			date := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
			d := &draft.Draft{
				Year:        2026,
				BranchID:    7,
				Description: "Leadership training",
				ScheduledDate: &date,
				Status:      draft.StatusDraft,
				CreatedBy:   1,
			}
			Expect(repo.CreateDraft(d)).To(Succeed())
			Expect(d.ID).To(BeNumerically(">", 0))

			found, err := repo.FindDraftByKey("Leadership training", &date, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.ID).To(Equal(d.ID))
		})

		It("matches undated drafts only against a nil date", func() {
			d := &draft.Draft{Year: 2026, BranchID: 7, Description: "Unscheduled", Status: draft.StatusDraft, CreatedBy: 1}
			Expect(repo.CreateDraft(d)).To(Succeed())

			found, err := repo.FindDraftByKey("Unscheduled", nil, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())

			date := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
			missed, err := repo.FindDraftByKey("Unscheduled", &date, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(missed).To(BeNil())
		})

		It("returns nil, nil when nothing matches", func() {
			found, err := repo.FindDraftByKey("Nope", nil, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("realization buckets", func() {
		It("creates and accumulates one bucket per branch and month", func() {
			rec := &realization.Realization{
				BranchID:          7,
				VenueName:         "Jakarta Pusat",
				Month:             4,
				Year:              2026,
				ActivityCount:     1,
				TotalParticipants: 12,
				TotalCost:         5_000_000,
				CreatedBy:         1,
			}
			Expect(repo.CreateRealization(rec)).To(Succeed())

			bucket, err := repo.FindRealizationBucket(7, 4, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(bucket).NotTo(BeNil())

			bucket.ActivityCount++
			bucket.TotalParticipants += 8
			bucket.TotalCost += 2_000_000
			Expect(repo.UpdateRealization(bucket)).To(Succeed())

			reread, err := repo.FindRealizationBucket(7, 4, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(reread.ActivityCount).To(Equal(2))
			Expect(reread.TotalParticipants).To(Equal(20))
			Expect(reread.TotalCost).To(Equal(int64(7_000_000)))
		})

		It("returns nil, nil for an empty bucket", func() {
			bucket, err := repo.FindRealizationBucket(7, 1, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(bucket).To(BeNil())
		})

		It("refuses a bucket whose creator is not a known user", func() {
			rec := &realization.Realization{
				BranchID:      7,
				Month:         5,
				Year:          2026,
				ActivityCount: 1,
			}
			Expect(repo.CreateRealization(rec)).NotTo(Succeed())
		})
	})

	Describe("directory lookups", func() {
		It("resolves the owner's branch", func() {
			branchID := int64(7)
			Expect(db.Create(&userDatamodel.User{
				Email:        "sari@mail.com",
				Name:         "Sari",
				PasswordHash: "x",
				Role:         "user",
				BranchID:     &branchID,
			}).Error).To(Succeed())

			var u userDatamodel.User
			Expect(db.Where("email = ?", "sari@mail.com").First(&u).Error).To(Succeed())

			got, err := repo.GetUserBranchID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveValue(Equal(branchID)))
		})

		It("returns nil, nil for an unknown user", func() {
			got, err := repo.GetUserBranchID(99999)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("resolves a branch display name", func() {
			b := userDatamodel.Branch{Name: "Bandung"}
			Expect(db.Create(&b).Error).To(Succeed())

			name, err := repo.GetBranchName(b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("Bandung"))
		})
	})
})

// testSchema mirrors the DDL under db/migrations in sqlite dialect, so the
// suite runs against the same NOT NULL, foreign key and unique constraints
// the production schema enforces. Branch 7 and user 1 back the fixtures.
const testSchema = `
CREATE TABLE subsidiaries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE branches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	address TEXT,
	subsidiary_id INTEGER REFERENCES subsidiaries(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE divisions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	branch_id INTEGER REFERENCES branches(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	branch_id INTEGER REFERENCES branches(id),
	division_id INTEGER REFERENCES divisions(id),
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE draft_tna (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	year INTEGER NOT NULL,
	branch_id INTEGER NOT NULL REFERENCES branches(id),
	division_id INTEGER REFERENCES divisions(id),
	description TEXT NOT NULL,
	scheduled_date DATE,
	participant_count INTEGER NOT NULL DEFAULT 0,
	duration_days INTEGER NOT NULL DEFAULT 0,
	level TEXT,
	base_cost INTEGER NOT NULL DEFAULT 0,
	transport_cost INTEGER NOT NULL DEFAULT 0,
	lodging_cost INTEGER NOT NULL DEFAULT 0,
	per_diem_cost INTEGER NOT NULL DEFAULT 0,
	total_cost INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'DRAFT',
	created_by INTEGER NOT NULL REFERENCES users(id),
	updated_by INTEGER REFERENCES users(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX uq_draft_tna_key
	ON draft_tna (description, COALESCE(scheduled_date, '0001-01-01'), branch_id);

CREATE TABLE training_realizations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	branch_id INTEGER NOT NULL REFERENCES branches(id),
	venue_name TEXT,
	address TEXT,
	month INTEGER NOT NULL,
	year INTEGER NOT NULL,
	activity_count INTEGER NOT NULL DEFAULT 0,
	total_participants INTEGER NOT NULL DEFAULT 0,
	total_cost INTEGER NOT NULL DEFAULT 0,
	notes TEXT,
	created_by INTEGER NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX uq_training_realizations_bucket
	ON training_realizations (branch_id, month, year);

INSERT INTO branches (id, name) VALUES (7, 'Jakarta Pusat');
INSERT INTO users (id, email, name, password_hash, role, branch_id)
	VALUES (1, 'owner@mail.com', 'Owner', 'x', 'user', 7);
`

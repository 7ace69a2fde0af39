package cmd

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range []string{"notifications", "proposal_items", "proposals", "draft_tna", "training_realizations", "users", "divisions", "branches", "subsidiaries"} {
				if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		subsidiaryID := seedSubsidiary(db, "PT Maju Bersama")
		jakartaID := seedBranch(db, "Jakarta Pusat", "Jl. Sudirman 1, Jakarta", subsidiaryID)
		bandungID := seedBranch(db, "Bandung", "Jl. Asia Afrika 10, Bandung", subsidiaryID)
		seedDivision(db, "Human Capital", jakartaID)
		seedDivision(db, "Operations", jakartaID)
		seedDivision(db, "Operations", bandungID)

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser(db, "sari@mail.com", "Sari", "user", string(hash), &jakartaID)
		seedUser(db, "budi@mail.com", "Budi Admin", "admin", string(hash), &jakartaID)
		seedUser(db, "rina@mail.com", "Rina Admin", "admin", string(hash), &bandungID)
		seedUser(db, "agus@mail.com", "Agus Superadmin", "superadmin", string(hash), nil)

		fmt.Println("Database seeded successfully (password for all demo users: password)")
	},
}

func seedSubsidiary(db *sqlx.DB, name string) int64 {
	var id int64
	if err := db.QueryRow("SELECT id FROM subsidiaries WHERE name = $1", name).Scan(&id); err == nil {
		return id
	}
	if err := db.QueryRow("INSERT INTO subsidiaries (name, created_at) VALUES ($1, now()) RETURNING id", name).Scan(&id); err != nil {
		log.Fatalf("failed to insert subsidiary %s: %v", name, err)
	}
	fmt.Println("Seeded subsidiary:", name)
	return id
}

func seedBranch(db *sqlx.DB, name, address string, subsidiaryID int64) int64 {
	var id int64
	if err := db.QueryRow("SELECT id FROM branches WHERE name = $1", name).Scan(&id); err == nil {
		return id
	}
	if err := db.QueryRow("INSERT INTO branches (name, address, subsidiary_id, created_at) VALUES ($1, $2, $3, now()) RETURNING id",
		name, address, subsidiaryID).Scan(&id); err != nil {
		log.Fatalf("failed to insert branch %s: %v", name, err)
	}
	fmt.Println("Seeded branch:", name)
	return id
}

func seedDivision(db *sqlx.DB, name string, branchID int64) {
	var exists int
	if err := db.QueryRow("SELECT 1 FROM divisions WHERE name = $1 AND branch_id = $2", name, branchID).Scan(&exists); err == nil {
		return
	}
	if _, err := db.Exec("INSERT INTO divisions (name, branch_id, created_at) VALUES ($1, $2, now())", name, branchID); err != nil {
		log.Fatalf("failed to insert division %s: %v", name, err)
	}
	fmt.Println("Seeded division:", name)
}

func seedUser(db *sqlx.DB, email, name, role, passwordHash string, branchID *int64) {
	var exists int
	if err := db.QueryRow("SELECT 1 FROM users WHERE email = $1", email).Scan(&exists); err == nil {
		fmt.Printf("user %s already exists; skipping\n", email)
		return
	}
	if _, err := db.Exec(
		"INSERT INTO users (email, name, password_hash, role, branch_id, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, true, now(), now())",
		email, name, passwordHash, role, branchID); err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Printf("Seeded %s user: %s\n", role, email)
}

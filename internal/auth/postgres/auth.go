package postgres

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/training-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var passwordHash string
	var userID int64
	query := `SELECT id, password_hash FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, fmt.Errorf("user not found")
		}
		return "", 0, err
	}
	return passwordHash, userID, nil
}

func (r *Repository) GetActorByID(userID int64) (*auth.Actor, error) {
	var actor auth.Actor
	var role string

	query := `SELECT id, name, email, role, branch_id, division_id FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&actor.UserID, &actor.Name, &actor.Email, &role, &actor.BranchID, &actor.DivisionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	actor.Role = auth.Role(role)
	if !actor.Role.Valid() {
		return nil, fmt.Errorf("user %d has unknown role %q", userID, role)
	}

	return &actor, nil
}

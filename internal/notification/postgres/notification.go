package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	notificationDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/notification"
	userDatamodel "github.com/frahmantamala/training-management/internal/core/datamodel/user"
	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/internal/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *notification.Notification) error {
	dm := notification.ToDataModel(n)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	*n = *notification.FromDataModel(dm)
	return nil
}

func (r *NotificationRepository) GetByID(id int64) (*notification.Notification, error) {
	var dm notificationDatamodel.Notification
	if err := r.db.First(&dm, id).Error; err != nil {
		return nil, err
	}
	return notification.FromDataModel(&dm), nil
}

func (r *NotificationRepository) GetByUserID(userID int64, limit, offset int) ([]*notification.Notification, error) {
	var dms []*notificationDatamodel.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return notification.FromDataModelSlice(dms), nil
}

func (r *NotificationRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(id int64) error {
	now := time.Now()
	return r.db.Model(&notificationDatamodel.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *NotificationRepository) MarkAllRead(userID int64) error {
	now := time.Now()
	return r.db.Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (r *NotificationRepository) Delete(id int64) error {
	return r.db.Delete(&notificationDatamodel.Notification{}, id).Error
}

// UserDirectory is the recipient-resolution side of the fan-out, backed by
// the same users table the auth layer reads.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) AdminsForBranch(branchID int64) ([]notification.Recipient, error) {
	return d.recipients(d.db.Where("role = ? AND branch_id = ? AND is_active = ?", auth.RoleAdmin, branchID, true))
}

func (d *UserDirectory) Superadmins() ([]notification.Recipient, error) {
	return d.recipients(d.db.Where("role = ? AND is_active = ?", auth.RoleSuperadmin, true))
}

func (d *UserDirectory) AllPrivileged() ([]notification.Recipient, error) {
	return d.recipients(d.db.Where("role IN ? AND is_active = ?", []auth.Role{auth.RoleAdmin, auth.RoleSuperadmin}, true))
}

func (d *UserDirectory) UserByID(userID int64) (*notification.Recipient, error) {
	var u userDatamodel.User
	if err := d.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &notification.Recipient{UserID: u.ID, Name: u.Name, Email: u.Email}, nil
}

func (d *UserDirectory) recipients(query *gorm.DB) ([]notification.Recipient, error) {
	var users []*userDatamodel.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	recipients := make([]notification.Recipient, len(users))
	for i, u := range users {
		recipients[i] = notification.Recipient{UserID: u.ID, Name: u.Name, Email: u.Email}
	}
	return recipients, nil
}

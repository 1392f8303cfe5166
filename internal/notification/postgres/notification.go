package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateBatch(rows []*notification.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	for _, n := range rows {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
	}
	if err := r.db.Create(rows).Error; err != nil {
		return internal.NewInternalError("failed to create notifications").WithCause(err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(userID string, unreadOnly bool, limit, offset int) ([]*notification.Notification, int64, error) {
	query := r.db.Model(&notification.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, internal.NewInternalError("failed to count notifications").WithCause(err)
	}

	var items []*notification.Notification
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, internal.NewInternalError("failed to list notifications").WithCause(err)
	}
	return items, total, nil
}

func (r *NotificationRepository) CountUnread(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, internal.NewInternalError("failed to count unread notifications").WithCause(err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(id, userID string) error {
	now := time.Now().UTC()
	result := r.db.Model(&notification.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return internal.NewInternalError("failed to mark notification read").WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(userID string) (int64, error) {
	now := time.Now().UTC()
	result := r.db.Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return 0, internal.NewInternalError("failed to mark notifications read").WithCause(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *NotificationRepository) Delete(id, userID string) error {
	result := r.db.Delete(&notification.Notification{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return internal.NewInternalError("failed to delete notification").WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrNotificationNotFound
	}
	return nil
}

package repositories

import (
	"gorm.io/gorm"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/pkg/apperrors"
	"github.com/pulsegram/backend/pkg/logger"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	// CreateBatch inserts notifications row by row, best-effort: individual
	// failures are logged and skipped. Returns the number inserted.
	CreateBatch(notifications []models.Notification) (int, error)
	GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAsRead(notificationID, recipientID uint) error
	MarkAllAsRead(recipientID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	if err := r.db.Create(notification).Error; err != nil {
		return apperrors.Unavailable(err, "failed to create notification")
	}
	return nil
}

// CreateBatch inserts each row independently so one bad row cannot sink
// the whole fan-out. Partial success is expected and reported upward.
func (r *postgresNotificationRepository) CreateBatch(notifications []models.Notification) (int, error) {
	inserted := 0
	var lastErr error
	for i := range notifications {
		if err := r.db.Create(&notifications[i]).Error; err != nil {
			lastErr = err
			logger.Log.Warnf("notification insert failed for recipient %d: %v", notifications[i].RecipientID, err)
			continue
		}
		inserted++
	}
	if inserted == 0 && lastErr != nil {
		return 0, apperrors.Unavailable(lastErr, "notification batch fully failed")
	}
	return inserted, nil
}

func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	if err := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Unavailable(err, "failed to count notifications")
	}

	offset := (page - 1) * limit
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, apperrors.Unavailable(err, "failed to load notifications")
	}

	return notifications, total, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to count unread notifications")
	}
	return count, nil
}

func (r *postgresNotificationRepository) MarkAsRead(notificationID, recipientID uint) error {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return apperrors.Unavailable(res.Error, "failed to mark notification read")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("notification not found")
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint) error {
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
	if err != nil {
		return apperrors.Unavailable(err, "failed to mark notifications read")
	}
	return nil
}

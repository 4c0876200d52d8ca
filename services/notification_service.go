package services

import (
	"context"
	"fmt"
	"time"

	"aethex-api/models"

	"gorm.io/gorm"
)

// NotificationRetention is how long read notifications are kept.
const NotificationRetention = 90 * 24 * time.Hour

type NotificationService struct {
	DB           *gorm.DB
	Now          func() time.Time
	PollInterval time.Duration // SSE poll period
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db, Now: time.Now, PollInterval: 2 * time.Second}
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var out []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, dbError("notifications", err)
	}
	return out, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return dbError("notifications", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notifications: %w", ErrNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, dbError("notifications", res.Error)
	}
	return res.RowsAffected, nil
}

// PurgeRead deletes read notifications older than the retention window.
func (s *NotificationService) PurgeRead(ctx context.Context) (int64, error) {
	cutoff := s.Now().Add(-NotificationRetention)
	res := s.DB.WithContext(ctx).
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, dbError("notifications", res.Error)
	}
	return res.RowsAffected, nil
}

// Since returns the user's notifications created after cursor, oldest first.
func (s *NotificationService) Since(ctx context.Context, userID string, cursor time.Time) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND created_at > ?", userID, cursor).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, dbError("notifications", err)
	}
	return out, nil
}

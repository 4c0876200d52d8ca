package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationAchievement NotificationType = "achievement"
	NotificationLevelUp     NotificationType = "level_up"
	NotificationInvoice     NotificationType = "invoice"
	NotificationApplication NotificationType = "application"
	NotificationSystem      NotificationType = "system"
)

type Notification struct {
	ID        string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string           `gorm:"type:uuid;index;not null" json:"user_id"`
	Type      NotificationType `gorm:"size:32;not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Read      bool             `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	newID(&n.ID)
	return nil
}

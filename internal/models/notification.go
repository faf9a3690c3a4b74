package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationSettings is a per-user row created lazily with defaults on
// first read.
type NotificationSettings struct {
	ID                          string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID                      string    `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	EmailNotifications          bool      `json:"emailNotifications" gorm:"not null;default:true"`
	LeadAssignmentNotifications bool      `json:"leadAssignmentNotifications" gorm:"not null;default:true"`
	CreatedAt                   time.Time `json:"createdAt"`
	UpdatedAt                   time.Time `json:"updatedAt"`
}

func (s *NotificationSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (NotificationSettings) TableName() string {
	return "user_notification_settings"
}

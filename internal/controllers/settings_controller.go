package controllers

import (
	"net/http"

	"github.com/carebridge/backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SettingsController struct {
	db *gorm.DB
}

func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{db: db}
}

// GetNotificationSettings returns the caller's settings, creating the row
// with defaults on first read.
func (sc *SettingsController) GetNotificationSettings(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var settings models.NotificationSettings
	err := sc.db.Where("user_id = ?", userID).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = models.NotificationSettings{
			UserID:                      userID.(string),
			EmailNotifications:          true,
			LeadAssignmentNotifications: true,
		}
		if err := sc.db.Create(&settings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create settings"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

type UpdateNotificationSettingsRequest struct {
	EmailNotifications          *bool `json:"emailNotifications"`
	LeadAssignmentNotifications *bool `json:"leadAssignmentNotifications"`
}

func (sc *SettingsController) UpdateNotificationSettings(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateNotificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var settings models.NotificationSettings
	err := sc.db.Where("user_id = ?", userID).First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		settings = models.NotificationSettings{
			UserID:                      userID.(string),
			EmailNotifications:          true,
			LeadAssignmentNotifications: true,
		}
		if err := sc.db.Create(&settings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create settings"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	// Explicit column updates: a false flag must reach the store even though
	// the column declares a default.
	updates := map[string]interface{}{}
	if req.EmailNotifications != nil {
		updates["email_notifications"] = *req.EmailNotifications
		settings.EmailNotifications = *req.EmailNotifications
	}
	if req.LeadAssignmentNotifications != nil {
		updates["lead_assignment_notifications"] = *req.LeadAssignmentNotifications
		settings.LeadAssignmentNotifications = *req.LeadAssignmentNotifications
	}
	if len(updates) > 0 {
		if err := sc.db.Model(&settings).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
			return
		}
	}

	c.JSON(http.StatusOK, settings)
}

package controllers

import (
	"net/http"
	"testing"

	"github.com/carebridge/backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newSettingsRouter(db *gorm.DB, userID string) *gin.Engine {
	sc := NewSettingsController(db)

	r := gin.New()
	g := r.Group("/", authAs(userID))
	g.GET("/settings/notifications", sc.GetNotificationSettings)
	g.PUT("/settings/notifications", sc.UpdateNotificationSettings)
	return r
}

func TestNotificationSettingsLazyCreate(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db, "user@example.com", models.RoleManager, false)

	r := newSettingsRouter(db, userID)

	rec := doJSON(t, r, http.MethodGet, "/settings/notifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var settings models.NotificationSettings
	decodeBody(t, rec, &settings)
	if !settings.EmailNotifications || !settings.LeadAssignmentNotifications {
		t.Errorf("defaults not on: %+v", settings)
	}

	// The row now exists.
	var count int64
	db.Model(&models.NotificationSettings{}).Where("user_id = ?", userID).Count(&count)
	if count != 1 {
		t.Errorf("%d settings rows, want 1", count)
	}

	// A second read does not duplicate it.
	doJSON(t, r, http.MethodGet, "/settings/notifications", nil)
	db.Model(&models.NotificationSettings{}).Where("user_id = ?", userID).Count(&count)
	if count != 1 {
		t.Errorf("%d settings rows after second read, want 1", count)
	}
}

func TestUpdateNotificationSettingsPartial(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db, "user@example.com", models.RoleManager, false)

	r := newSettingsRouter(db, userID)

	off := false
	rec := doJSON(t, r, http.MethodPut, "/settings/notifications", UpdateNotificationSettingsRequest{
		EmailNotifications: &off,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var settings models.NotificationSettings
	decodeBody(t, rec, &settings)
	if settings.EmailNotifications {
		t.Error("emailNotifications still on")
	}
	if !settings.LeadAssignmentNotifications {
		t.Error("untouched field changed")
	}
}

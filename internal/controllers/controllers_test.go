package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carebridge/backend/internal/config"
	"github.com/carebridge/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const testPassword = "Passw0rd123"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.Set(&config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret",
			TokenExpiry:        time.Hour,
			PendingTokenExpiry: 5 * time.Minute,
			ResetTokenExpiry:   30 * time.Minute,
		},
		Mail: config.MailConfig{Provider: "console"},
	})

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A fresh pool connection would see an empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: ":memory:", Conn: sqlDB}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.UserRole{},
		&models.Lead{},
		&models.LeadNote{},
		&models.LeadTag{},
		&models.OnboardingQuestion{},
		&models.NotificationSettings{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// createUser inserts a user with profile and optional role row, returning
// the user ID. An empty role leaves the identity roleless.
func createUser(t *testing.T, db *gorm.DB, email string, role models.AppRole, canCrud bool) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := models.User{Email: email, Password: string(hash)}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	fullName := email
	if err := db.Create(&models.Profile{ID: user.ID, Email: &email, FullName: &fullName}).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}

	if role != "" {
		if err := db.Create(&models.UserRole{UserID: user.ID, Role: role, CanManageCrud: canCrud}).Error; err != nil {
			t.Fatalf("create role: %v", err)
		}
	}

	return user.ID
}

func createLead(t *testing.T, db *gorm.DB, name string, managerID *string) models.Lead {
	t.Helper()

	lead := models.Lead{
		ContactName:       name,
		ContactEmail:      name + "@example.com",
		ContactPhone:      "07700 900123",
		PostalCode:        "SW1A 1AA",
		SupportType:       "companionship",
		VisitFrequency:    "twice-daily",
		CareDuration:      "long-term",
		Priority:          "flexibility",
		Status:            models.LeadStatusNew,
		AssignedManagerID: managerID,
	}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("create lead: %v", err)
	}
	return lead
}

// authAs simulates the auth middleware by injecting the identity into the
// request context.
func authAs(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

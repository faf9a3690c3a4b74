package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/carebridge/backend/internal/models"
	"github.com/carebridge/backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newMetricsRouter(db *gorm.DB, userID string) *gin.Engine {
	mc := NewMetricsController(db)

	r := gin.New()
	g := r.Group("/", authAs(userID))
	g.GET("/metrics/stats", mc.GetStats)
	g.GET("/metrics/series", mc.GetSeries)
	return r
}

func createLeadAt(t *testing.T, db *gorm.DB, name string, at time.Time, managerID *string) models.Lead {
	t.Helper()
	lead := models.Lead{
		ContactName:       name,
		ContactEmail:      name + "@example.com",
		ContactPhone:      "07700 900123",
		PostalCode:        "SW1A 1AA",
		Status:            models.LeadStatusNew,
		AssignedManagerID: managerID,
		CreatedAt:         at,
	}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatal(err)
	}
	return lead
}

func TestMetricsStats(t *testing.T) {
	db := setupTestDB(t)
	adminID := createUser(t, db, "admin@example.com", models.RoleAdmin, false)

	now := time.Now().UTC()
	recent := createLeadAt(t, db, "Recent", now.Add(-24*time.Hour), nil)
	createLeadAt(t, db, "Ancient", now.AddDate(0, -3, 0), nil)
	db.Create(&models.LeadTag{LeadID: recent.ID, Tag: models.TagHot})

	r := newMetricsRouter(db, adminID)

	rec := doJSON(t, r, http.MethodGet, "/metrics/stats?window=last30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Window string         `json:"window"`
		Stats  services.Stats `json:"stats"`
	}
	decodeBody(t, rec, &resp)
	if resp.Window != "last30" {
		t.Errorf("window = %q", resp.Window)
	}
	if resp.Stats.TotalLeads != 1 {
		t.Errorf("TotalLeads = %d, want 1 (old lead outside window)", resp.Stats.TotalLeads)
	}
	if resp.Stats.NewLeads != 1 {
		t.Errorf("NewLeads = %d", resp.Stats.NewLeads)
	}
	if resp.Stats.HotLeads != 1 {
		t.Errorf("HotLeads = %d", resp.Stats.HotLeads)
	}
	if resp.Stats.CalledLeads != 0 {
		t.Errorf("CalledLeads = %d", resp.Stats.CalledLeads)
	}
}

func TestMetricsScopedForManager(t *testing.T) {
	db := setupTestDB(t)
	managerID := createUser(t, db, "manager@example.com", models.RoleManager, false)

	now := time.Now().UTC()
	createLeadAt(t, db, "Mine", now.Add(-time.Hour), &managerID)
	createLeadAt(t, db, "Foreign", now.Add(-time.Hour), nil)

	r := newMetricsRouter(db, managerID)

	rec := doJSON(t, r, http.MethodGet, "/metrics/stats?window=last7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Stats services.Stats `json:"stats"`
	}
	decodeBody(t, rec, &resp)
	if resp.Stats.TotalLeads != 1 {
		t.Errorf("TotalLeads = %d, want only assigned lead", resp.Stats.TotalLeads)
	}
}

func TestMetricsSeries(t *testing.T) {
	db := setupTestDB(t)
	adminID := createUser(t, db, "admin@example.com", models.RoleAdmin, false)

	now := time.Now().UTC()
	createLeadAt(t, db, "One", now.Add(-time.Hour), nil)
	createLeadAt(t, db, "Two", now.Add(-2*time.Hour), nil)

	r := newMetricsRouter(db, adminID)

	rec := doJSON(t, r, http.MethodGet, "/metrics/series?window=last7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Bucket string                 `json:"bucket"`
		Points []services.SeriesPoint `json:"points"`
	}
	decodeBody(t, rec, &resp)
	if resp.Bucket != "day" {
		t.Errorf("bucket = %q, want day", resp.Bucket)
	}
	if len(resp.Points) != 7 {
		t.Fatalf("got %d points, want 7", len(resp.Points))
	}

	var total int64
	for _, p := range resp.Points {
		total += p.New
	}
	if total != 2 {
		t.Errorf("summed new leads = %d, want 2", total)
	}
}

func TestMetricsRejectsUnknownWindow(t *testing.T) {
	db := setupTestDB(t)
	adminID := createUser(t, db, "admin@example.com", models.RoleAdmin, false)
	r := newMetricsRouter(db, adminID)

	rec := doJSON(t, r, http.MethodGet, "/metrics/stats?window=fortnight", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMetricsDeniedWithoutRole(t *testing.T) {
	db := setupTestDB(t)
	userID := createUser(t, db, "nobody@example.com", "", false)
	r := newMetricsRouter(db, userID)

	rec := doJSON(t, r, http.MethodGet, "/metrics/stats", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

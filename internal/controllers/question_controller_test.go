package controllers

import (
	"net/http"
	"testing"

	"github.com/carebridge/backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newQuestionRouter(db *gorm.DB, userID string) *gin.Engine {
	qc := NewQuestionController(db)

	r := gin.New()
	r.GET("/questions/active", qc.GetActiveQuestions)
	g := r.Group("/", authAs(userID))
	g.GET("/questions", qc.GetQuestions)
	g.POST("/questions", qc.CreateQuestion)
	g.PUT("/questions/:id", qc.UpdateQuestion)
	g.DELETE("/questions/:id", qc.DeleteQuestion)
	return r
}

func seedQuestion(t *testing.T, db *gorm.DB, step int, active bool) models.OnboardingQuestion {
	t.Helper()
	q := models.OnboardingQuestion{
		StepNumber:   step,
		FieldName:    "supportType",
		QuestionText: "What type of support do you need?",
		Options:      `["mobility","companionship"]`,
		IsActive:     active,
	}
	if err := db.Create(&q).Error; err != nil {
		t.Fatal(err)
	}
	return q
}

func TestActiveQuestionsArePublicAndFiltered(t *testing.T) {
	db := setupTestDB(t)
	seedQuestion(t, db, 1, true)
	seedQuestion(t, db, 2, false)

	r := newQuestionRouter(db, "")

	rec := doJSON(t, r, http.MethodGet, "/questions/active", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Questions []models.OnboardingQuestion `json:"questions"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Questions) != 1 {
		t.Fatalf("got %d questions, want 1 active", len(resp.Questions))
	}
	if !resp.Questions[0].IsActive {
		t.Error("inactive question served to the public")
	}
}

func TestQuestionManagementRequiresCrudFlag(t *testing.T) {
	db := setupTestDB(t)

	// An admin without the flag cannot manage content; a manager with the
	// flag can.
	adminID := createUser(t, db, "admin@example.com", models.RoleAdmin, false)
	managerCrudID := createUser(t, db, "editor@example.com", models.RoleManager, true)

	body := QuestionRequest{
		StepNumber:   1,
		FieldName:    "supportType",
		QuestionText: "What type of support do you need?",
		Options:      []string{"mobility", "companionship"},
	}

	r := newQuestionRouter(db, adminID)
	rec := doJSON(t, r, http.MethodPost, "/questions", body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("admin without flag: status = %d, want 403", rec.Code)
	}
	rec = doJSON(t, r, http.MethodGet, "/questions", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("admin without flag listing: status = %d, want 403", rec.Code)
	}

	r = newQuestionRouter(db, managerCrudID)
	rec = doJSON(t, r, http.MethodPost, "/questions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("manager with flag: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestQuestionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	editorID := createUser(t, db, "editor@example.com", models.RoleAdmin, true)
	r := newQuestionRouter(db, editorID)

	rec := doJSON(t, r, http.MethodPost, "/questions", QuestionRequest{
		StepNumber:   2,
		FieldName:    "visitFrequency",
		QuestionText: "How often?",
		Options:      []string{"once-daily", "twice-daily"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}
	var created models.OnboardingQuestion
	decodeBody(t, rec, &created)
	if created.Options != `["once-daily","twice-daily"]` {
		t.Errorf("Options = %q", created.Options)
	}
	if !created.IsActive {
		t.Error("new question not active by default")
	}

	inactive := false
	rec = doJSON(t, r, http.MethodPut, "/questions/"+created.ID, QuestionRequest{
		StepNumber:   2,
		FieldName:    "visitFrequency",
		QuestionText: "How often would you like visits?",
		Options:      []string{"once-daily", "twice-daily", "overnight"},
		IsActive:     &inactive,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d", rec.Code)
	}
	var updated models.OnboardingQuestion
	decodeBody(t, rec, &updated)
	if updated.IsActive {
		t.Error("question still active after update")
	}
	if updated.QuestionText != "How often would you like visits?" {
		t.Errorf("QuestionText = %q", updated.QuestionText)
	}

	rec = doJSON(t, r, http.MethodDelete, "/questions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodDelete, "/questions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("double delete: status = %d, want 404", rec.Code)
	}
}

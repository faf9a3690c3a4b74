package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/carebridge/backend/internal/authz"
	"github.com/carebridge/backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// QuestionController manages the CMS copy behind the wizard's choice
// steps. Writes are gated solely by the content-management flag,
// independent of role.
type QuestionController struct {
	db *gorm.DB
}

func NewQuestionController(db *gorm.DB) *QuestionController {
	return &QuestionController{db: db}
}

// GetActiveQuestions serves the wizard's copy. Public.
func (qc *QuestionController) GetActiveQuestions(c *gin.Context) {
	var questions []models.OnboardingQuestion
	if err := qc.db.Where("is_active = ?", true).Order("step_number").Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// GetQuestions lists everything, including inactive rows, for the CMS.
func (qc *QuestionController) GetQuestions(c *gin.Context) {
	if _, ok := requireAction(c, qc.db, authz.ActionManageContent); !ok {
		return
	}

	var questions []models.OnboardingQuestion
	if err := qc.db.Order("step_number").Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

type QuestionRequest struct {
	StepNumber   int      `json:"stepNumber" binding:"required"`
	FieldName    string   `json:"fieldName" binding:"required"`
	QuestionText string   `json:"questionText" binding:"required"`
	Options      []string `json:"options" binding:"required"`
	IsActive     *bool    `json:"isActive"`
}

func (qc *QuestionController) CreateQuestion(c *gin.Context) {
	if _, ok := requireAction(c, qc.db, authz.ActionManageContent); !ok {
		return
	}

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options, err := json.Marshal(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid options"})
		return
	}

	question := models.OnboardingQuestion{
		StepNumber:   req.StepNumber,
		FieldName:    req.FieldName,
		QuestionText: req.QuestionText,
		Options:      string(options),
		IsActive:     true,
	}
	if err := qc.db.Create(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
		return
	}

	// A false flag on create has to be an explicit update: the insert path
	// would fall back to the column default.
	if req.IsActive != nil && !*req.IsActive {
		if err := qc.db.Model(&question).Update("is_active", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
			return
		}
		question.IsActive = false
	}
	c.JSON(http.StatusCreated, question)
}

func (qc *QuestionController) UpdateQuestion(c *gin.Context) {
	if _, ok := requireAction(c, qc.db, authz.ActionManageContent); !ok {
		return
	}

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var question models.OnboardingQuestion
	if err := qc.db.First(&question, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch question"})
		}
		return
	}

	options, err := json.Marshal(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid options"})
		return
	}

	question.StepNumber = req.StepNumber
	question.FieldName = req.FieldName
	question.QuestionText = req.QuestionText
	question.Options = string(options)
	if req.IsActive != nil {
		question.IsActive = *req.IsActive
	}

	if err := qc.db.Save(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update question"})
		return
	}
	c.JSON(http.StatusOK, question)
}

func (qc *QuestionController) DeleteQuestion(c *gin.Context) {
	if _, ok := requireAction(c, qc.db, authz.ActionManageContent); !ok {
		return
	}

	result := qc.db.Delete(&models.OnboardingQuestion{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete question"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Question deleted successfully",
	})
}

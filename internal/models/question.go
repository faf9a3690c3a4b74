package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OnboardingQuestion is CMS-managed copy for one of the wizard's choice
// steps. Options holds the JSON-encoded answer list.
type OnboardingQuestion struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	StepNumber   int       `json:"stepNumber" gorm:"not null"`
	FieldName    string    `json:"fieldName" gorm:"not null"`
	QuestionText string    `json:"questionText" gorm:"type:text;not null"`
	Options      string    `json:"options" gorm:"type:text;not null"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (q *OnboardingQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func (OnboardingQuestion) TableName() string {
	return "onboarding_questions"
}

package controllers

import (
	"net/http"

	"github.com/carebridge/backend/internal/events"
	"github.com/carebridge/backend/internal/logger"
	"github.com/carebridge/backend/internal/models"
	"github.com/carebridge/backend/internal/validation"
	"github.com/carebridge/backend/internal/wizard"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OnboardingController drives the public lead-intake wizard. Sessions live
// in memory; the lead row is only written on a successful submit.
type OnboardingController struct {
	db    *gorm.DB
	bus   *events.Bus
	store *wizard.Store
}

func NewOnboardingController(db *gorm.DB, bus *events.Bus, store *wizard.Store) *OnboardingController {
	return &OnboardingController{db: db, bus: bus, store: store}
}

func sessionState(sess *wizard.Session) gin.H {
	return gin.H{
		"id":    sess.ID,
		"step":  sess.Wizard.Step,
		"draft": sess.Wizard.Draft,
	}
}

// StartSession opens a fresh wizard at step 1 with default preferences.
// A signed-in visitor's submissions are attributed to them; anonymous
// visitors proceed with no identity.
func (oc *OnboardingController) StartSession(c *gin.Context) {
	var createdBy *string
	if userID, exists := c.Get("userID"); exists {
		id := userID.(string)
		createdBy = &id
	}

	sess := oc.store.Start(createdBy)
	c.JSON(http.StatusCreated, sessionState(sess))
}

// GetSession returns the current step and draft.
func (oc *OnboardingController) GetSession(c *gin.Context) {
	sess, ok := oc.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	sess.Lock()
	defer sess.Unlock()
	c.JSON(http.StatusOK, sessionState(sess))
}

// SetFields records draft values. Preference fields are rejected unless
// the value is one of the fixed choices; free-text fields are accepted
// as-is and validated at the step gates.
func (oc *OnboardingController) SetFields(c *gin.Context) {
	sess, ok := oc.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	for name, value := range fields {
		if err := sess.Wizard.SetField(name, value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": name})
			return
		}
	}
	c.JSON(http.StatusOK, sessionState(sess))
}

// Next advances the wizard. The postcode step blocks until the postcode
// validates; the contact step only moves forward through Submit.
func (oc *OnboardingController) Next(c *gin.Context) {
	sess, ok := oc.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if err := sess.Wizard.Next(); err != nil {
		if fieldErr, isField := err.(*validation.FieldError); isField {
			c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Message, "field": fieldErr.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionState(sess))
}

// Back steps the wizard backwards, never below the first step. Entered
// values are retained.
func (oc *OnboardingController) Back(c *gin.Context) {
	sess, ok := oc.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	sess.Wizard.Back()
	c.JSON(http.StatusOK, sessionState(sess))
}

// Submit validates the contact details and writes the lead. On success
// the wizard lands on the terminal step and the change is broadcast to
// console subscribers; on failure nothing is persisted and the wizard
// stays on the contact step.
func (oc *OnboardingController) Submit(c *gin.Context) {
	sess, ok := oc.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	// Held across the whole submit so a concurrent second submit finds the
	// wizard already at the terminal step rather than persisting twice.
	sess.Lock()
	defer sess.Unlock()

	var lead models.Lead
	var dbErr error
	err := sess.Wizard.Submit(func(d wizard.Draft) error {
		lead = models.Lead{
			ContactName:    d.ContactName,
			ContactEmail:   d.Email,
			ContactPhone:   d.Phone,
			PostalCode:     d.PostalCode,
			SupportType:    d.SupportType,
			VisitFrequency: d.VisitFrequency,
			CareDuration:   d.CareDuration,
			Priority:       d.Priority,
			Status:         models.LeadStatusNew,
			CreatedBy:      sess.CreatedBy,
		}
		dbErr = oc.db.Create(&lead).Error
		return dbErr
	})
	if err != nil {
		if fieldErr, isField := err.(*validation.FieldError); isField {
			c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Message, "field": fieldErr.Field})
			return
		}
		if dbErr != nil {
			logger.WithError(dbErr, "onboarding").Error("lead submit failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit enquiry"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	oc.bus.Publish("leads", events.EventInsert, lead.ID)
	c.JSON(http.StatusCreated, gin.H{
		"id":     sess.ID,
		"step":   sess.Wizard.Step,
		"leadId": lead.ID,
	})
}

// CloseSession discards the session and its draft. Nothing is saved.
func (oc *OnboardingController) CloseSession(c *gin.Context) {
	oc.store.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package controllers

import (
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/carebridge/backend/internal/authz"
	"github.com/carebridge/backend/internal/events"
	"github.com/carebridge/backend/internal/logger"
	"github.com/carebridge/backend/internal/models"
	"github.com/carebridge/backend/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LeadController struct {
	db  *gorm.DB
	bus *events.Bus

	// sequence lets clients discard list responses that were superseded by
	// a later request (stale-response guard for rapid filter changes).
	sequence atomic.Int64
}

func NewLeadController(db *gorm.DB, bus *events.Bus) *LeadController {
	return &LeadController{db: db, bus: bus}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring LIKE pattern with the metacharacters in
// the search term escaped, so "100%" matches the literal text and not
// every row.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// GetLeads lists leads under the caller's visibility scope. Filters compose
// with AND: search (case-insensitive substring over contact name/email/
// phone), status equality, manager equality ("unassigned" selects null),
// tag membership. Ordered by creation time descending.
func (lc *LeadController) GetLeads(c *gin.Context) {
	actor, ok := requireAction(c, lc.db, authz.ActionViewLeads)
	if !ok {
		return
	}

	seq := lc.sequence.Add(1)

	query := authz.LeadScope(actor, lc.db.Model(&models.Lead{})).
		Preload("Tags").
		Preload("Manager").
		Order("created_at DESC")

	if search := c.Query("search"); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"LOWER(contact_name) LIKE LOWER(?) ESCAPE '\\' OR LOWER(contact_email) LIKE LOWER(?) ESCAPE '\\' OR LOWER(contact_phone) LIKE LOWER(?) ESCAPE '\\'",
			pattern, pattern, pattern,
		)
	}
	if status := c.Query("status"); status != "" && status != "all" {
		if !models.ValidLeadStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}
	if manager := c.Query("manager"); manager != "" && manager != "all" {
		if manager == "unassigned" {
			query = query.Where("assigned_manager_id IS NULL")
		} else {
			query = query.Where("assigned_manager_id = ?", manager)
		}
	}
	if tag := c.Query("tag"); tag != "" && tag != "all" {
		if !models.ValidLeadTag(tag) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag filter"})
			return
		}
		query = query.Where(
			"EXISTS (SELECT 1 FROM lead_tags WHERE lead_tags.lead_id = leads.id AND lead_tags.tag = ?)",
			tag,
		)
	}

	var leads []models.Lead
	if err := query.Find(&leads).Error; err != nil {
		logger.WithError(err, "lead_controller").Error("lead list query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads":    leads,
		"count":    len(leads),
		"sequence": seq,
	})
}

// GetLead returns one lead with notes (newest first) and tags. A lead
// outside the caller's scope reads as not found.
func (lc *LeadController) GetLead(c *gin.Context) {
	actor, ok := requireAction(c, lc.db, authz.ActionViewLeads)
	if !ok {
		return
	}

	var lead models.Lead
	err := authz.LeadScope(actor, lc.db).
		Preload("Tags").
		Preload("Manager").
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("lead_notes.created_at DESC")
		}).
		Preload("Notes.Author").
		First(&lead, "leads.id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lead"})
		}
		return
	}

	c.JSON(http.StatusOK, lead)
}

type CreateLeadRequest struct {
	ContactName    string `json:"contactName" binding:"required"`
	ContactEmail   string `json:"contactEmail" binding:"required"`
	ContactPhone   string `json:"contactPhone" binding:"required"`
	PostalCode     string `json:"postalCode" binding:"required"`
	SupportType    string `json:"supportType"`
	VisitFrequency string `json:"visitFrequency"`
	CareDuration   string `json:"careDuration"`
	Priority       string `json:"priority"`
}

// CreateLead records a lead from the console, attributed to the caller.
func (lc *LeadController) CreateLead(c *gin.Context) {
	actor, ok := requireAction(c, lc.db, authz.ActionEditLead)
	if !ok {
		return
	}

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact := validation.ContactInput{
		ContactName: req.ContactName,
		Email:       req.ContactEmail,
		Phone:       req.ContactPhone,
		PostalCode:  req.PostalCode,
	}
	if errs := contact.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs[0].Message, "field": errs[0].Field})
		return
	}

	lead := models.Lead{
		ContactName:    contact.ContactName,
		ContactEmail:   contact.Email,
		ContactPhone:   contact.Phone,
		PostalCode:     contact.PostalCode,
		SupportType:    req.SupportType,
		VisitFrequency: req.VisitFrequency,
		CareDuration:   req.CareDuration,
		Priority:       req.Priority,
		Status:         models.LeadStatusNew,
		CreatedBy:      &actor.UserID,
	}
	if err := lc.db.Create(&lead).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead"})
		return
	}

	lc.bus.Publish("leads", events.EventInsert, lead.ID)
	c.JSON(http.StatusCreated, lead)
}

type UpdateLeadRequest struct {
	Status            *string `json:"status"`
	AssignedManagerID *string `json:"assignedManagerId"`
}

// UpdateLead applies independent single-field mutations: status and/or
// assignment. Each write is its own row-level update with no transaction
// across entities. "unassigned" clears the assignment.
func (lc *LeadController) UpdateLead(c *gin.Context) {
	_, ok := requireAction(c, lc.db, authz.ActionEditLead)
	if !ok {
		return
	}

	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var lead models.Lead
	if err := lc.db.First(&lead, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lead"})
		}
		return
	}

	if req.Status != nil {
		if !models.ValidLeadStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		if err := lc.db.Model(&lead).Update("status", *req.Status).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
			return
		}
	}

	if req.AssignedManagerID != nil {
		if *req.AssignedManagerID == "" || *req.AssignedManagerID == "unassigned" {
			if err := lc.db.Model(&lead).Update("assigned_manager_id", nil).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign manager"})
				return
			}
		} else {
			var manager models.Profile
			if err := lc.db.First(&manager, "id = ?", *req.AssignedManagerID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown manager"})
				return
			}
			if err := lc.db.Model(&lead).Update("assigned_manager_id", *req.AssignedManagerID).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign manager"})
				return
			}
		}
	}

	lc.bus.Publish("leads", events.EventUpdate, lead.ID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Lead updated successfully",
	})
}

// DeleteLead removes a lead and, through the storage layer, its notes and
// tags. The confirm flag is the explicit confirmation step.
func (lc *LeadController) DeleteLead(c *gin.Context) {
	actor, ok := currentActor(c, lc.db)
	if !ok {
		return
	}
	if !authz.Can(actor, authz.ActionDeleteLead) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Deletion requires confirmation"})
		return
	}

	var lead models.Lead
	if err := lc.db.First(&lead, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lead"})
		}
		return
	}

	// Child rows first: SQLite does not always enforce the declared
	// cascade, and the delete must not leave orphans either way. One
	// transaction so a failure partway through rolls the children back.
	err := lc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", lead.ID).Delete(&models.LeadNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", lead.ID).Delete(&models.LeadTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lead).Error
	})
	if err != nil {
		logger.WithError(err, "lead_controller").Error("lead delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lead"})
		return
	}

	lc.bus.Publish("leads", events.EventDelete, lead.ID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Lead deleted successfully",
	})
}

type AddNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// AddNote appends an immutable annotation authored by the caller.
func (lc *LeadController) AddNote(c *gin.Context) {
	actor, ok := requireAction(c, lc.db, authz.ActionViewLeads)
	if !ok {
		return
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var lead models.Lead
	if err := authz.LeadScope(actor, lc.db).First(&lead, "leads.id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	note := models.LeadNote{
		LeadID:    lead.ID,
		CreatedBy: actor.UserID,
		Note:      req.Note,
	}
	if err := lc.db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add note"})
		return
	}

	lc.bus.Publish("lead_notes", events.EventInsert, note.ID)
	c.JSON(http.StatusCreated, note)
}

// ToggleTag flips a lead's membership in one of the four fixed categories:
// present removes it, absent adds it. The unique index on (lead_id, tag)
// backstops concurrent toggles so duplicate rows never coexist.
func (lc *LeadController) ToggleTag(c *gin.Context) {
	actor, ok := requireAction(c, lc.db, authz.ActionViewLeads)
	if !ok {
		return
	}

	tag := c.Param("tag")
	if !models.ValidLeadTag(tag) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag"})
		return
	}

	var lead models.Lead
	if err := authz.LeadScope(actor, lc.db).First(&lead, "leads.id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	var existing models.LeadTag
	err := lc.db.Where("lead_id = ? AND tag = ?", lead.ID, tag).First(&existing).Error
	switch {
	case err == nil:
		if err := lc.db.Delete(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove tag"})
			return
		}
		lc.bus.Publish("lead_tags", events.EventDelete, existing.ID)
		c.JSON(http.StatusOK, gin.H{"tagged": false})
	case err == gorm.ErrRecordNotFound:
		row := models.LeadTag{LeadID: lead.ID, Tag: models.LeadTagKind(tag)}
		if err := lc.db.Create(&row).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add tag"})
			return
		}
		lc.bus.Publish("lead_tags", events.EventInsert, row.ID)
		c.JSON(http.StatusOK, gin.H{"tagged": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle tag"})
	}
}

// Subscribe streams change events for the lead tables over SSE for the
// lifetime of the console view. The subscription is released when the
// client disconnects.
func (lc *LeadController) Subscribe(c *gin.Context) {
	if _, ok := requireAction(c, lc.db, authz.ActionViewLeads); !ok {
		return
	}

	ch, cancel := lc.bus.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case change, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("change", change)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

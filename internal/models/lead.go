package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusContacted  LeadStatus = "contacted"
	LeadStatusInProgress LeadStatus = "in_progress"
	LeadStatusConverted  LeadStatus = "converted"
	LeadStatusClosed     LeadStatus = "closed"
)

// ValidLeadStatus reports whether s is one of the recognized statuses.
// Transitions between statuses are deliberately unrestricted.
func ValidLeadStatus(s string) bool {
	switch LeadStatus(s) {
	case LeadStatusNew, LeadStatusContacted, LeadStatusInProgress,
		LeadStatusConverted, LeadStatusClosed:
		return true
	}
	return false
}

type LeadTagKind string

const (
	TagHot    LeadTagKind = "hot"
	TagSpam   LeadTagKind = "spam"
	TagCalled LeadTagKind = "called"
	TagUrgent LeadTagKind = "urgent"
)

// ValidLeadTag reports whether s is one of the four fixed tags.
func ValidLeadTag(s string) bool {
	switch LeadTagKind(s) {
	case TagHot, TagSpam, TagCalled, TagUrgent:
		return true
	}
	return false
}

// Lead is a prospective care-service inquiry captured from the public
// intake wizard or created in the console. CreatedBy is nil for anonymous
// submissions.
type Lead struct {
	ID                string     `json:"id" gorm:"type:uuid;primaryKey"`
	ContactName       string     `json:"contactName" gorm:"not null"`
	ContactEmail      string     `json:"contactEmail" gorm:"not null"`
	ContactPhone      string     `json:"contactPhone" gorm:"not null"`
	PostalCode        string     `json:"postalCode"`
	SupportType       string     `json:"supportType"`
	VisitFrequency    string     `json:"visitFrequency"`
	CareDuration      string     `json:"careDuration"`
	Priority          string     `json:"priority"`
	Status            LeadStatus `json:"status" gorm:"not null;default:'new'"`
	AssignedManagerID *string    `json:"assignedManagerId" gorm:"type:uuid;index"`
	CreatedBy         *string    `json:"createdBy" gorm:"type:uuid"`
	CreatedAt         time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	Manager *Profile   `json:"manager,omitempty" gorm:"foreignKey:AssignedManagerID"`
	Notes   []LeadNote `json:"notes,omitempty" gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
	Tags    []LeadTag  `json:"tags,omitempty" gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (Lead) TableName() string {
	return "leads"
}

// LeadNote is an append-only annotation. No update or delete is offered.
type LeadNote struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	LeadID    string    `json:"leadId" gorm:"type:uuid;not null;index"`
	CreatedBy string    `json:"createdBy" gorm:"type:uuid;not null"`
	Note      string    `json:"note" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`

	Author *Profile `json:"author,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (n *LeadNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

func (LeadNote) TableName() string {
	return "lead_notes"
}

// LeadTag is a boolean membership of a lead in one of the four fixed
// categories. The composite unique index guarantees no duplicate rows.
type LeadTag struct {
	ID        string      `json:"id" gorm:"type:uuid;primaryKey"`
	LeadID    string      `json:"leadId" gorm:"type:uuid;not null;uniqueIndex:idx_lead_tag"`
	Tag       LeadTagKind `json:"tag" gorm:"not null;uniqueIndex:idx_lead_tag"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (t *LeadTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (LeadTag) TableName() string {
	return "lead_tags"
}

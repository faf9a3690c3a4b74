package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppRole string

const (
	RoleSuperadmin AppRole = "superadmin"
	RoleAdmin      AppRole = "admin"
	RoleManager    AppRole = "manager"
)

// ValidRole reports whether s is one of the recognized roles.
func ValidRole(s string) bool {
	switch AppRole(s) {
	case RoleSuperadmin, RoleAdmin, RoleManager:
		return true
	}
	return false
}

// UserRole assigns a role and the orthogonal CRUD-management flag to a user.
// A user without a row here has no role and is denied all privileged actions.
type UserRole struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        string    `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Role          AppRole   `json:"role" gorm:"not null;default:'manager'"`
	CanManageCrud bool      `json:"canManageCrud" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (UserRole) TableName() string {
	return "user_roles"
}

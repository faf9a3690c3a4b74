// Package authz centralizes authorization decisions so UI gating and data
// scoping cannot drift apart.
//
// Authorization rules:
//   - Role assignment and the CRUD-management flag: superadmin only
//   - Lead deletion: superadmin, or admin with the CRUD-management flag
//   - Content (onboarding question) management: the CRUD-management flag
//     alone, independent of role
//   - Lead editing (status, assignment): admin or superadmin
//   - Managers see and aggregate only leads assigned to themselves
package authz

import (
	"github.com/carebridge/backend/internal/models"
	"gorm.io/gorm"
)

// Actor is a resolved authenticated identity. An identity without a role
// row resolves to the zero Actor, which is denied every action.
type Actor struct {
	UserID        string
	Role          models.AppRole
	CanManageCrud bool
}

func (a Actor) IsSuperadmin() bool { return a.Role == models.RoleSuperadmin }
func (a Actor) IsAdmin() bool      { return a.Role == models.RoleAdmin }
func (a Actor) IsManager() bool    { return a.Role == models.RoleManager }

// HasRole reports whether the actor resolved to any recognized role.
func (a Actor) HasRole() bool {
	return models.ValidRole(string(a.Role))
}

// Action is a privileged operation subject to a policy decision.
type Action int

const (
	ActionViewLeads Action = iota
	ActionEditLead
	ActionDeleteLead
	ActionManageRoles
	ActionManageContent
	ActionViewUsers
	ActionViewMetrics
)

// Can is the single authorization-decision function. Every handler that
// gates a privileged operation goes through here.
func Can(a Actor, action Action) bool {
	if !a.HasRole() {
		// Content management is flag-only, but an identity with no role
		// cannot hold the flag either.
		return false
	}

	switch action {
	case ActionViewLeads, ActionViewMetrics:
		return true
	case ActionEditLead:
		return a.IsSuperadmin() || a.IsAdmin()
	case ActionDeleteLead:
		return a.IsSuperadmin() || (a.IsAdmin() && a.CanManageCrud)
	case ActionManageRoles:
		return a.IsSuperadmin()
	case ActionManageContent:
		return a.CanManageCrud
	case ActionViewUsers:
		return a.IsSuperadmin() || a.IsAdmin()
	default:
		return false
	}
}

// LeadScope narrows a leads query to the rows the actor may see: managers
// only their own assignments, admin and superadmin everything.
func LeadScope(a Actor, q *gorm.DB) *gorm.DB {
	if a.IsManager() {
		return q.Where("assigned_manager_id = ?", a.UserID)
	}
	return q
}

// Resolve loads the actor for a user ID. A missing role row yields an
// actor with no role rather than an error.
func Resolve(db *gorm.DB, userID string) (Actor, error) {
	var role models.UserRole
	err := db.Where("user_id = ?", userID).First(&role).Error
	if err == gorm.ErrRecordNotFound {
		return Actor{UserID: userID}, nil
	}
	if err != nil {
		return Actor{}, err
	}
	return Actor{
		UserID:        userID,
		Role:          role.Role,
		CanManageCrud: role.CanManageCrud,
	}, nil
}

package controllers

import (
	"net/http"

	"github.com/carebridge/backend/internal/authz"
	"github.com/carebridge/backend/internal/models"
	"github.com/carebridge/backend/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	db *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// UserRow is a console listing entry: profile joined with the role
// assignment, if any.
type UserRow struct {
	models.Profile
	Role *models.UserRole `json:"role"`
}

// GetCurrentUser resolves the caller's identity, profile and permissions
// (the "current session" query).
func (uc *UserController) GetCurrentUser(c *gin.Context) {
	actor, ok := currentActor(c, uc.db)
	if !ok {
		return
	}

	var user models.User
	if err := uc.db.First(&user, "id = ?", actor.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var profile models.Profile
	if err := uc.db.First(&profile, "id = ?", actor.UserID).Error; err != nil && err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"profile": profile,
		"permissions": gin.H{
			"role":          actor.Role,
			"isSuperadmin":  actor.IsSuperadmin(),
			"isAdmin":       actor.IsAdmin(),
			"isManager":     actor.IsManager(),
			"canManageCrud": actor.CanManageCrud,
		},
	})
}

// GetUsers lists all profiles with their role assignments.
func (uc *UserController) GetUsers(c *gin.Context) {
	if _, ok := requireAction(c, uc.db, authz.ActionViewUsers); !ok {
		return
	}

	var profiles []models.Profile
	if err := uc.db.Order("full_name").Find(&profiles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	var roles []models.UserRole
	if err := uc.db.Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roles"})
		return
	}
	byUser := make(map[string]*models.UserRole, len(roles))
	for i := range roles {
		byUser[roles[i].UserID] = &roles[i]
	}

	rows := make([]UserRow, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, UserRow{Profile: p, Role: byUser[p.ID]})
	}

	c.JSON(http.StatusOK, gin.H{"users": rows})
}

// GetManagers lists profiles for the assignment dropdown. Any console user
// may read it.
func (uc *UserController) GetManagers(c *gin.Context) {
	if _, ok := requireAction(c, uc.db, authz.ActionViewLeads); !ok {
		return
	}

	var profiles []models.Profile
	if err := uc.db.Order("full_name").Find(&profiles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch managers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"managers": profiles})
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateUserRole assigns or changes a user's role. Superadmin only.
func (uc *UserController) UpdateUserRole(c *gin.Context) {
	if _, ok := requireAction(c, uc.db, authz.ActionManageRoles); !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be one of: superadmin, admin, manager"})
		return
	}

	userID := c.Param("id")
	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var role models.UserRole
	err := uc.db.Where("user_id = ?", userID).First(&role).Error
	switch {
	case err == nil:
		role.Role = models.AppRole(req.Role)
		if err := uc.db.Save(&role).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user role"})
			return
		}
	case err == gorm.ErrRecordNotFound:
		role = models.UserRole{UserID: userID, Role: models.AppRole(req.Role)}
		if err := uc.db.Create(&role).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign user role"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User role updated successfully",
		"role":    role,
	})
}

type UpdateCrudFlagRequest struct {
	CanManageCrud *bool `json:"canManageCrud" binding:"required"`
}

// UpdateCrudFlag toggles the content-management flag. Superadmin only.
func (uc *UserController) UpdateCrudFlag(c *gin.Context) {
	if _, ok := requireAction(c, uc.db, authz.ActionManageRoles); !ok {
		return
	}

	var req UpdateCrudFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var role models.UserRole
	if err := uc.db.Where("user_id = ?", c.Param("id")).First(&role).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User has no role assignment"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user role"})
		}
		return
	}

	if err := uc.db.Model(&role).Update("can_manage_crud", *req.CanManageCrud).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update permission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Permission updated successfully",
	})
}

// RemoveUserRole deletes a user's role assignment, revoking console
// access. The account itself is kept. Superadmin only.
func (uc *UserController) RemoveUserRole(c *gin.Context) {
	actor, ok := requireAction(c, uc.db, authz.ActionManageRoles)
	if !ok {
		return
	}

	userID := c.Param("id")
	if userID == actor.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot remove your own role"})
		return
	}

	result := uc.db.Where("user_id = ?", userID).Delete(&models.UserRole{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove user role"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User has no role assignment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User role removed successfully",
	})
}

type UpdateProfileRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	CompanyName string `json:"companyName"`
	PostalCode  string `json:"postalCode"`
}

// UpdateProfile edits a profile: superadmin/admin for any user, anyone for
// themself.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c, uc.db)
	if !ok {
		return
	}

	userID := c.Param("id")
	if userID != actor.UserID && !authz.Can(actor, authz.ActionViewUsers) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := validation.ProfileInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		CompanyName: req.CompanyName,
		PostalCode:  req.PostalCode,
	}
	if errs := input.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs[0].Message, "field": errs[0].Field})
		return
	}

	var profile models.Profile
	if err := uc.db.First(&profile, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	if input.FullName != "" {
		profile.FullName = &input.FullName
	}
	if input.PhoneNumber != "" {
		profile.PhoneNumber = &input.PhoneNumber
	}
	if input.CompanyName != "" {
		profile.CompanyName = &input.CompanyName
	}
	if input.PostalCode != "" {
		profile.PostalCode = &input.PostalCode
	}

	if err := uc.db.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

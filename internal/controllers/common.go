package controllers

import (
	"net/http"

	"github.com/carebridge/backend/internal/authz"
	"github.com/carebridge/backend/internal/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// currentActor resolves the authenticated identity's role from the store.
// ok is false when the request is unauthenticated or resolution failed; a
// response has already been written in that case.
func currentActor(c *gin.Context, db *gorm.DB) (authz.Actor, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return authz.Actor{}, false
	}

	actor, err := authz.Resolve(db, userID.(string))
	if err != nil {
		logger.WithError(err, "authz").Error("role resolution failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve permissions"})
		return authz.Actor{}, false
	}
	return actor, true
}

// requireAction resolves the actor and enforces a policy decision, writing
// the access-denied state on refusal.
func requireAction(c *gin.Context, db *gorm.DB, action authz.Action) (authz.Actor, bool) {
	actor, ok := currentActor(c, db)
	if !ok {
		return authz.Actor{}, false
	}
	if !authz.Can(actor, action) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return authz.Actor{}, false
	}
	return actor, true
}

package controllers

import (
	"net/http"

	"wellfield-backend/config"
	"wellfield-backend/models"
	"wellfield-backend/utils"

	"github.com/gin-gonic/gin"
)

// currentUser loads the authenticated user placed in context by the auth
// middleware. On failure it writes the error response itself.
func currentUser(c *gin.Context) (*models.User, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return nil, false
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return nil, false
	}
	if !user.IsActive {
		utils.RespondWithError(c, http.StatusUnauthorized, "User account is inactive")
		return nil, false
	}

	return &user, true
}

// ManagerRequired restricts a route group to managers and superusers.
func ManagerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.Abort()
			return
		}

		if !user.IsSuperuser && !user.InGroup(config.DB, models.GroupManagers) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				gin.H{"error": "You must be a Manager or Superuser to access this page."})
			return
		}

		c.Set("currentUser", user)
		c.Next()
	}
}

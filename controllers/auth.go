package controllers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wellfield-backend/config"
	"wellfield-backend/metrics"
	"wellfield-backend/models"
	"wellfield-backend/services"
	"wellfield-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginPage lets the frontend fetch the generic flash message a rejected
// magic-link redirect carries in the query string.
func LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"error": c.Query("error")})
}

// Login is the password path of the authentication gateway. Success
// establishes a session cookie and reports a role-appropriate redirect
// target; any failure yields the same generic rejection.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	username := strings.TrimSpace(input.Username)

	var user models.User
	result := config.DB.Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			metrics.RecordAuthAttempt(false)
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !user.IsActive || !utils.CheckPasswordHash(input.Password, user.Password) {
		metrics.RecordAuthAttempt(false)
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID.String())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now().UTC()
	if err := config.DB.Model(&user).Update("last_login", &now).Error; err != nil {
		log.Printf("[AUTH] Failed to record last login for %s: %v", user.Username, err)
	}

	utils.SetSessionCookie(c, token)
	metrics.RecordAuthAttempt(true)

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"redirect": redirectFor(&user),
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"name":     user.FullName(),
		},
	})
}

// MagicLogin is the magic-link path of the authentication gateway. The token
// is consumed exactly once; unknown, expired and already-used tokens all take
// the same rejection path so the response never works as a guessing oracle.
func MagicLogin(c *gin.Context) {
	profile, err := services.ConsumeMagicLink(config.DB, c.Param("token"))
	if err != nil {
		// ErrLinkNotFound and unexpected failures get the same generic flash
		c.Redirect(http.StatusFound, "/login?error="+url.QueryEscape("Invalid or expired login link."))
		return
	}

	token, err := utils.GenerateToken(profile.UserID.String())
	if err != nil {
		c.Redirect(http.StatusFound, "/login?error="+url.QueryEscape("Invalid or expired login link."))
		return
	}

	now := time.Now().UTC()
	if err := config.DB.Model(&models.User{}).Where("id = ?", profile.UserID).
		Update("last_login", &now).Error; err != nil {
		log.Printf("[AUTH] Failed to record last login for user %s: %v", profile.UserID, err)
	}

	utils.SetSessionCookie(c, token)
	c.Redirect(http.StatusFound, "/users")
}

func Logout(c *gin.Context) {
	utils.ClearSessionCookie(c)
	c.Redirect(http.StatusFound, "/")
}

func Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"name":        user.FullName(),
			"isSuperuser": user.IsSuperuser,
			"isManager":   user.InGroup(config.DB, models.GroupManagers),
			"isCustomer":  user.InGroup(config.DB, models.GroupCustomers),
		},
	})
}

// redirectFor picks the post-login landing page by role.
func redirectFor(user *models.User) string {
	switch {
	case user.IsSuperuser:
		return "/admin"
	case user.InGroup(config.DB, models.GroupManagers):
		return "/managers"
	case user.InGroup(config.DB, models.GroupCustomers):
		return "/users"
	default:
		return "/"
	}
}

package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"wellfield-backend/config"
	"wellfield-backend/models"
	"wellfield-backend/services"
	"wellfield-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateCustomerInput defines the editable CRM fields of a customer profile
type UpdateCustomerInput struct {
	RecentContact *time.Time `json:"recentContact"`
	FirstSession  *time.Time `json:"firstSession"`
	Interest      *string    `json:"interest"`
	Phone         *string    `json:"phone"`
	Notes         *string    `json:"notes"`
}

// GetCustomers lists customer profiles for the manager dashboard
func GetCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var profiles []models.CustomerProfile
	if err := config.DB.Preload("User").Preload("Appointments").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&profiles).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// GetCustomer retrieves one customer profile with its appointments
func GetCustomer(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var profile models.CustomerProfile
	if err := config.DB.Preload("User").Preload("Appointments").
		First(&profile, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateCustomer updates the CRM fields of a profile. first_contact is
// immutable and the magic-link fields are owned by the issuer.
func UpdateCustomer(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var profile models.CustomerProfile
	if err := config.DB.First(&profile, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.RecentContact != nil {
		profile.RecentContact = input.RecentContact
	}
	if input.FirstSession != nil {
		profile.FirstSession = input.FirstSession
	}
	if input.Interest != nil {
		profile.Interest = *input.Interest
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		profile.Phone = *input.Phone
	}
	if input.Notes != nil {
		profile.Notes = *input.Notes
	}

	if err := config.DB.Save(&profile).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SendMagicLink issues a fresh login link for a customer and emails it. This
// overwrites any link still live from an earlier issue.
func SendMagicLink(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var profile models.CustomerProfile
	if err := config.DB.Preload("User").First(&profile, "id = ?", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	token, err := services.IssueMagicLink(config.DB, &profile)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to issue magic link")
		return
	}

	loginURL := publicBaseURL(c) + "/magic-login/" + token

	textBody := fmt.Sprintf(`Hello %s,

You requested a magic login link. Click the link below to access your account:

%s

This link will expire in 24 hours.

If you didn't request this, please ignore this email.`, profile.User.Username, loginURL)

	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
<p>You requested a magic login link. Click the button below to access your account:</p>
<p><a href="%s" class="btn btn-primary">Login Now</a></p>
<p>This link will expire in 24 hours.</p>
<p>If you didn't request this, please ignore this email.</p>`, profile.User.Username, loginURL)

	// Delivery is best-effort: the link is already persisted, so a mail
	// failure is logged but the request still succeeds.
	sendErr := mailer.Send(services.MailMessage{
		To:      profile.User.Email,
		Subject: "Your Magic Login Link",
		Body:    htmlBody,
		HTML:    true,
	})
	if sendErr != nil {
		log.Printf("[CUSTOMER] Warning: failed to send magic link email to %s: %v", profile.User.Email, sendErr)
	}

	entry := models.NotificationLog{
		ProfileID: profile.ID,
		Kind:      models.NotificationKindMagicLink,
		Channel:   models.NotificationChannelEmail,
		Message:   textBody,
		Status:    models.NotificationStatusSent,
		SentAt:    time.Now().UTC(),
	}
	if sendErr != nil {
		entry.Status = models.NotificationStatusFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		log.Printf("[CUSTOMER] Failed to log magic link notification: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Magic link sent successfully!"})
}

// publicBaseURL builds absolute links for emails from PUBLIC_BASE_URL,
// falling back to the request host.
func publicBaseURL(c *gin.Context) string {
	if base := os.Getenv("PUBLIC_BASE_URL"); base != "" {
		return base
	}
	scheme := "https"
	if c.Request.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + c.Request.Host
}

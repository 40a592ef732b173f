package controllers

import (
	"errors"
	"net/http"
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

// ContactFormInput mirrors the public contact form.
type ContactFormInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ContactPrefill returns the subject a card link pre-selects on the form.
func ContactPrefill(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subject": c.Query("subject")})
}

// SubmitContact handles a public contact form submission.
func SubmitContact(c *gin.Context) {
	var input ContactFormInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	contact, err := intake.Submit(services.ContactInput{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
	})
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			utils.RespondWithValidationError(c, http.StatusBadRequest, ve.Fields)
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save your message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      contact.ID,
		"message": "Thank you for contacting us! We'll get back to you soon.",
	})
}

// ListContacts returns the message inbox for managers, newest first.
func ListContacts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var contacts []models.Contact
	if err := config.DB.Order("when_sent DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&contacts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve messages")
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// MarkContactReplied flags a message as handled.
func MarkContactReplied(c *gin.Context) {
	contactID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid message ID format")
		return
	}

	var contact models.Contact
	if err := config.DB.First(&contact, "id = ?", contactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Message not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	now := time.Now().UTC()
	contact.Replied = true
	contact.WhenReplied = &now
	if err := config.DB.Save(&contact).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update message")
		return
	}

	c.JSON(http.StatusOK, contact)
}

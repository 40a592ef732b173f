package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"wellfield-backend/config"
	"wellfield-backend/models"
	"wellfield-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateAppointmentInput struct {
	ProfileID uuid.UUID `json:"profileId" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	KeyPoints string    `json:"keyPoints"`
	FollowUp  string    `json:"followUp"`
}

type UpdateAppointmentInput struct {
	Date      *time.Time `json:"date"`
	KeyPoints *string    `json:"keyPoints"`
	FollowUp  *string    `json:"followUp"`
}

// GetAppointments lists appointments, optionally scoped to one customer via
// ?profileId= and to a day via ?date=YYYY-MM-DD.
func GetAppointments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := config.DB.Preload("Profile.User").Order("date DESC")

	if profileID := c.Query("profileId"); profileID != "" {
		id, err := uuid.Parse(profileID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid profile ID format")
			return
		}
		query = query.Where("profile_id = ?", id)
	}

	if dateStr := c.Query("date"); dateStr != "" {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		query = query.Where("date >= ? AND date <= ?", utils.BeginningOfDay(day), utils.EndOfDay(day))
	}

	var appointments []models.Appointment
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

func GetAppointment(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appointment models.Appointment
	if err := config.DB.Preload("Profile.User").
		First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, appointment)
}

func CreateAppointment(c *gin.Context) {
	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var profile models.CustomerProfile
	if err := config.DB.First(&profile, "id = ?", input.ProfileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	appointment := models.Appointment{
		ProfileID: profile.ID,
		Date:      input.Date,
		KeyPoints: input.KeyPoints,
		FollowUp:  input.FollowUp,
	}
	if err := config.DB.Create(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

func UpdateAppointment(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var appointment models.Appointment
	if err := config.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Date != nil {
		appointment.Date = *input.Date
	}
	if input.KeyPoints != nil {
		appointment.KeyPoints = *input.KeyPoints
	}
	if input.FollowUp != nil {
		appointment.FollowUp = *input.FollowUp
	}

	if err := config.DB.Save(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// UpdateAppointmentStatus toggles the billing flags. Only invoiced and paid
// may change through this endpoint; anything else is rejected.
func UpdateAppointmentStatus(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var input map[string]bool
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if len(input) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No status fields provided")
		return
	}

	updates := map[string]interface{}{}
	for field, value := range input {
		switch field {
		case "invoiced", "paid":
			updates[field] = value
		default:
			utils.RespondWithError(c, http.StatusBadRequest, "Field not allowed: "+field)
			return
		}
	}

	var appointment models.Appointment
	if err := config.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Model(&appointment).Updates(updates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment status")
		return
	}

	c.JSON(http.StatusOK, appointment)
}

func DeleteAppointment(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	result := config.DB.Delete(&models.Appointment{}, "id = ?", appointmentID)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete appointment")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

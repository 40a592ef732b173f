// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"wellfield-backend/models"
	"wellfield-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// ReminderService notifies customers about tomorrow's appointments. SMS via
// Twilio when the profile has a phone number, email otherwise. Every attempt
// is recorded in the notification log and sent at most once per appointment.
type ReminderService struct {
	db     *gorm.DB
	mailer Mailer
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB, mailer Mailer) *ReminderService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db:     db,
		mailer: mailer,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) smsEnabled() bool {
	return os.Getenv("TWILIO_ACCOUNT_SID") != "" && os.Getenv("TWILIO_PHONE_NUMBER") != ""
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 8 AM
	c.AddFunc("0 8 * * *", s.SendAppointmentReminders)

	c.Start()
	log.Println("Appointment reminder scheduler started")
}

// SendAppointmentReminders processes all appointments scheduled for tomorrow.
func (s *ReminderService) SendAppointmentReminders() {
	log.Println("Starting appointment reminder processing...")

	tomorrow := time.Now().UTC().Add(24 * time.Hour)
	start := utils.BeginningOfDay(tomorrow)
	end := utils.EndOfDay(tomorrow)

	var appointments []models.Appointment
	err := s.db.Preload("Profile.User").
		Where("date BETWEEN ? AND ?", start, end).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Failed to fetch upcoming appointments: %v", err)
		return
	}

	for _, appt := range appointments {
		if s.alreadyReminded(appt.ID) {
			continue
		}
		s.remind(appt)
	}

	log.Println("Appointment reminder processing completed")
}

func (s *ReminderService) alreadyReminded(appointmentID uuid.UUID) bool {
	var count int64
	s.db.Model(&models.NotificationLog{}).
		Where("appointment_id = ? AND kind = ? AND status = ?",
			appointmentID, models.NotificationKindReminder, models.NotificationStatusSent).
		Count(&count)
	return count > 0
}

func (s *ReminderService) remind(appt models.Appointment) {
	name := appt.Profile.User.FirstName
	if name == "" {
		name = appt.Profile.User.Username
	}
	message := fmt.Sprintf("Hi %s, this is a reminder of your appointment on %s.",
		name, appt.Date.Format("Monday 2 January at 15:04"))

	channel := models.NotificationChannelEmail
	var sendErr error

	if appt.Profile.Phone != "" && s.smsEnabled() {
		channel = models.NotificationChannelSMS
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(appt.Profile.Phone)
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
		params.SetBody(message)

		resp, err := s.client.Api.CreateMessage(params)
		sendErr = err
		if err != nil {
			log.Printf("Failed to send reminder SMS to %s: %v", appt.Profile.Phone, err)
		} else if resp.Sid != nil {
			log.Printf("Reminder SMS sent to %s, SID: %s", appt.Profile.Phone, *resp.Sid)
		}
	} else {
		sendErr = s.mailer.Send(MailMessage{
			To:      appt.Profile.User.Email,
			Subject: "Your upcoming appointment",
			Body:    message,
		})
		if sendErr != nil {
			log.Printf("Failed to send reminder email to %s: %v", appt.Profile.User.Email, sendErr)
		}
	}

	entry := models.NotificationLog{
		ProfileID:     appt.ProfileID,
		AppointmentID: &appt.ID,
		Kind:          models.NotificationKindReminder,
		Channel:       channel,
		Message:       message,
		Status:        models.NotificationStatusSent,
		SentAt:        time.Now().UTC(),
	}
	if sendErr != nil {
		entry.Status = models.NotificationStatusFailed
		entry.ErrorMessage = sendErr.Error()
	}

	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log reminder for appointment %s: %v", appt.ID, err)
	}
}

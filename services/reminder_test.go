package services

import (
	"testing"
	"time"

	"wellfield-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAppointmentReminders(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewReminderService(db, mailer)

	profile := createProfile(t, db, "reminder@example.com")

	tomorrow := models.Appointment{
		ProfileID: profile.ID,
		Date:      time.Now().UTC().Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(&tomorrow).Error)

	// Outside the window, must not be picked up.
	nextWeek := models.Appointment{
		ProfileID: profile.ID,
		Date:      time.Now().UTC().Add(7 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(&nextWeek).Error)

	svc.SendAppointmentReminders()

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "reminder@example.com", mailer.sent[0].To)

	var logs []models.NotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.NotificationKindReminder, logs[0].Kind)
	assert.Equal(t, models.NotificationChannelEmail, logs[0].Channel)
	assert.Equal(t, models.NotificationStatusSent, logs[0].Status)
	require.NotNil(t, logs[0].AppointmentID)
	assert.Equal(t, tomorrow.ID, *logs[0].AppointmentID)
}

func TestSendAppointmentRemindersIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewReminderService(db, mailer)

	profile := createProfile(t, db, "once@example.com")
	appt := models.Appointment{
		ProfileID: profile.ID,
		Date:      time.Now().UTC().Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(&appt).Error)

	svc.SendAppointmentReminders()
	svc.SendAppointmentReminders()

	assert.Len(t, mailer.sent, 1)

	var count int64
	db.Model(&models.NotificationLog{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationKindReminder  = "reminder"
	NotificationKindMagicLink = "magic_link"

	NotificationChannelSMS   = "sms"
	NotificationChannelEmail = "email"

	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// NotificationLog records every outbound customer notification attempt.
type NotificationLog struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	ProfileID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index"`

	Kind         string `gorm:"size:20"` // reminder, magic_link
	Channel      string `gorm:"size:20"` // sms, email
	Message      string `gorm:"type:text"`
	Status       string `gorm:"size:20"` // sent, failed
	ErrorMessage string `gorm:"type:text"`
	SentAt       time.Time

	gorm.Model
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

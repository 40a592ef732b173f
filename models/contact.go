package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is an immutable record of one inbound message. It is deliberately
// not linked to CustomerProfile: a message is evidence of outreach, not a
// relationship. Correlation happens by email equality.
type Contact struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Name    string    `gorm:"size:255;not null"`
	Email   string    `gorm:"size:255;index;not null"`
	Subject string    `gorm:"size:255;not null"`
	Message string    `gorm:"type:text;not null"`

	WhenSent    time.Time `gorm:"not null"`
	Replied     bool      `gorm:"default:false"`
	WhenReplied *time.Time

	gorm.Model
}

func (c *Contact) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

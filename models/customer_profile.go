package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerProfile is the authentication anchor for customers. It is created
// lazily on first contact submission and carries the magic-link login state:
// token and expiry are either both set or both null.
type CustomerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	User   User      `gorm:"foreignKey:UserID"`

	FirstContact  time.Time `gorm:"not null"` // immutable after creation
	RecentContact *time.Time
	FirstSession  *time.Time
	Interest      string `gorm:"size:100"`
	Phone         string // optional, enables SMS appointment reminders
	Notes         string `gorm:"type:text"`

	MagicLinkToken   *string `gorm:"size:100;index"`
	MagicLinkExpires *time.Time

	Appointments []Appointment `gorm:"foreignKey:ProfileID"`

	gorm.Model
}

func (p *CustomerProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasLiveMagicLink reports whether an unconsumed, unexpired token exists.
func (p *CustomerProfile) HasLiveMagicLink(at time.Time) bool {
	return p.MagicLinkToken != nil && p.MagicLinkExpires != nil && at.Before(*p.MagicLinkExpires)
}

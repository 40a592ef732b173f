package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Appointment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProfileID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Profile   CustomerProfile `gorm:"foreignKey:ProfileID"`

	Date      time.Time `gorm:"index;not null"`
	KeyPoints string    `gorm:"type:text"`
	FollowUp  string    `gorm:"type:text"`
	Invoiced  bool      `gorm:"default:false"`
	Paid      bool      `gorm:"default:false"`

	gorm.Model
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

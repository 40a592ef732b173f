package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Custom JSONB type for provider metadata
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			b = []byte(s)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}
	return json.Unmarshal(b, &j)
}

// Product mirrors one product of the Stripe catalog. The primary key is the
// Stripe object ID, so webhook and sync upserts are naturally idempotent.
type Product struct {
	ID          string `gorm:"size:255;primary_key"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"default:true"`
	Type        string `gorm:"size:20;default:'service'"`
	Metadata    JSONB  `gorm:"type:jsonb"`

	Prices []Price `gorm:"foreignKey:ProductID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Price mirrors one Stripe price attached to a product.
type Price struct {
	ID        string `gorm:"size:255;primary_key"`
	ProductID string `gorm:"size:255;index;not null"`

	Active     bool   `gorm:"default:true"`
	Currency   string `gorm:"size:3;default:'usd'"`
	UnitAmount *int64 // smallest currency unit

	BillingScheme          string `gorm:"size:20;default:'per_unit'"`
	RecurringInterval      string `gorm:"size:10"`
	RecurringIntervalCount int64
	LookupKey              string `gorm:"size:255"`
	Metadata               JSONB  `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

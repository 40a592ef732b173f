package models

import (
	"log"
	"strings"
	"time"

	"wellfield-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GroupCustomers = "Customers"
	GroupManagers  = "Managers"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Username string    `gorm:"uniqueIndex;not null"` // contact email doubles as username
	Email    string    `gorm:"not null"`
	Password string    // bcrypt hash; empty for accounts created via contact intake

	FirstName string
	LastName  string

	IsSuperuser bool `gorm:"default:false"`
	IsStaff     bool `gorm:"default:false"`
	IsActive    bool `gorm:"default:true"`

	LastLogin *time.Time

	Groups []Group `gorm:"many2many:user_groups;"`

	gorm.Model
}

// Initialize UUID and hash the password before creating. Accounts created by
// the contact intake have no password; leaving the hash empty keeps password
// login impossible for them.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Password != "" {
		hashed, err := utils.HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashed
	}
	return nil
}

func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// InGroup reports membership in a named group. A failed lookup counts as
// non-membership, which can only withhold privileges, never grant them.
func (u *User) InGroup(db *gorm.DB, name string) bool {
	var count int64
	err := db.Table("user_groups").
		Joins("JOIN groups ON groups.id = user_groups.group_id").
		Where("user_groups.user_id = ? AND groups.name = ?", u.ID, name).
		Count(&count).Error
	if err != nil {
		log.Printf("[AUTH] Group lookup failed for user %s: %v", u.ID, err)
	}
	return count > 0
}

type Group struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"uniqueIndex;not null"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

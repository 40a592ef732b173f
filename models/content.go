package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContentTypeBanner  = "BANNER"
	ContentTypeCard    = "CARD"
	ContentTypeAbout   = "ABOUT"
	ContentTypeFAQ     = "FAQ"
	ContentTypePrivacy = "PRIVACY"
	ContentTypeTerms   = "TERMS"
)

var ContentTypes = []string{
	ContentTypeBanner,
	ContentTypeCard,
	ContentTypeAbout,
	ContentTypeFAQ,
	ContentTypePrivacy,
	ContentTypeTerms,
}

func IsValidContentType(t string) bool {
	for _, ct := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// Content is a managed block of site copy: banners and product cards on the
// home page, and the about/faq/privacy/terms pages.
type Content struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Title       string    `gorm:"size:255"`
	Description string    `gorm:"type:text;not null"`
	ContentType string    `gorm:"size:20;default:'CARD';index"`
	Enabled     bool      `gorm:"default:true"`
	SortOrder   int       `gorm:"default:0"`

	Media []ContentMedia `gorm:"foreignKey:ContentID"`

	gorm.Model
}

func (c *Content) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type ContentMedia struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ContentID uuid.UUID `gorm:"type:uuid;index;not null"`

	MediaType string `gorm:"size:20;default:'IMAGE'"`
	FilePath  string `gorm:"not null"` // relative to the upload dir
	Caption   string `gorm:"size:255"`
	SortOrder int    `gorm:"default:0"`
	CreatedAt time.Time
}

func (m *ContentMedia) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// URL returns the public path the media is served under.
func (m *ContentMedia) URL() string {
	return "/media/" + m.FilePath
}

// services/magic_link.go
package services

import (
	"errors"
	"time"

	"wellfield-backend/metrics"
	"wellfield-backend/models"
	"wellfield-backend/utils"

	"gorm.io/gorm"
)

// MagicLinkTTL is how long an issued login link stays valid.
const MagicLinkTTL = 24 * time.Hour

// IssueMagicLink generates a fresh single-use login token for the profile and
// persists it together with its expiry. Any previously issued token is
// overwritten, so at most one link is live per profile.
func IssueMagicLink(db *gorm.DB, profile *models.CustomerProfile) (string, error) {
	token := utils.MagicToken()
	expires := time.Now().UTC().Add(MagicLinkTTL)

	err := db.Model(profile).Updates(map[string]interface{}{
		"magic_link_token":   token,
		"magic_link_expires": expires,
	}).Error
	if err != nil {
		return "", err
	}

	profile.MagicLinkToken = &token
	profile.MagicLinkExpires = &expires
	metrics.RecordMagicLinkIssued()
	return token, nil
}

// ConsumeMagicLink validates a token and burns it. The token matches only
// while its expiry is strictly in the future; on a match both fields are
// cleared in the same transaction, so a token authenticates at most once even
// under concurrent requests. Unknown, expired and already-consumed tokens are
// all reported as ErrLinkNotFound.
func ConsumeMagicLink(db *gorm.DB, token string) (*models.CustomerProfile, error) {
	if token == "" {
		metrics.RecordMagicLinkConsumed(false)
		return nil, ErrLinkNotFound
	}

	var profile models.CustomerProfile
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		if err := tx.Where("magic_link_token = ? AND magic_link_expires > ?", token, now).
			First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkNotFound
			}
			return err
		}

		// Conditional update keyed by id+token: if a concurrent request
		// consumed the token between the read and here, zero rows match.
		res := tx.Model(&models.CustomerProfile{}).
			Where("id = ? AND magic_link_token = ?", profile.ID, token).
			Updates(map[string]interface{}{
				"magic_link_token":   nil,
				"magic_link_expires": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLinkNotFound
		}

		profile.MagicLinkToken = nil
		profile.MagicLinkExpires = nil
		return nil
	})
	if err != nil {
		metrics.RecordMagicLinkConsumed(false)
		return nil, err
	}

	if err := db.First(&profile.User, "id = ?", profile.UserID).Error; err != nil {
		metrics.RecordMagicLinkConsumed(false)
		return nil, err
	}

	metrics.RecordMagicLinkConsumed(true)
	return &profile, nil
}

package services

import (
	"testing"
	"time"

	"wellfield-backend/models"
	"wellfield-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createProfile(t *testing.T, db *gorm.DB, email string) *models.CustomerProfile {
	t.Helper()

	user := models.User{Username: email, Email: email, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	now := time.Now().UTC()
	profile := models.CustomerProfile{
		UserID:        user.ID,
		FirstContact:  now,
		RecentContact: &now,
	}
	require.NoError(t, db.Create(&profile).Error)
	return &profile
}

func TestIssueMagicLink(t *testing.T) {
	db := newTestDB(t)
	profile := createProfile(t, db, "issue@example.com")

	before := time.Now().UTC()
	token, err := IssueMagicLink(db, profile)
	require.NoError(t, err)
	assert.Len(t, token, utils.MagicTokenLength)

	var stored models.CustomerProfile
	require.NoError(t, db.First(&stored, "id = ?", profile.ID).Error)
	require.NotNil(t, stored.MagicLinkToken)
	require.NotNil(t, stored.MagicLinkExpires)
	assert.Equal(t, token, *stored.MagicLinkToken)

	expectedExpiry := before.Add(MagicLinkTTL)
	assert.WithinDuration(t, expectedExpiry, *stored.MagicLinkExpires, 5*time.Second)
	assert.True(t, stored.HasLiveMagicLink(time.Now().UTC()))
}

func TestReissueOverwritesPreviousLink(t *testing.T) {
	db := newTestDB(t)
	profile := createProfile(t, db, "reissue@example.com")

	first, err := IssueMagicLink(db, profile)
	require.NoError(t, err)
	second, err := IssueMagicLink(db, profile)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// The first token is dead the moment the second is issued.
	_, err = ConsumeMagicLink(db, first)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	consumed, err := ConsumeMagicLink(db, second)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, consumed.ID)
}

func TestConsumeMagicLinkIsSingleUse(t *testing.T) {
	db := newTestDB(t)
	profile := createProfile(t, db, "consume@example.com")

	token, err := IssueMagicLink(db, profile)
	require.NoError(t, err)

	consumed, err := ConsumeMagicLink(db, token)
	require.NoError(t, err)
	assert.Equal(t, profile.UserID, consumed.UserID)
	assert.Equal(t, "consume@example.com", consumed.User.Username)
	assert.Nil(t, consumed.MagicLinkToken)
	assert.Nil(t, consumed.MagicLinkExpires)

	var stored models.CustomerProfile
	require.NoError(t, db.First(&stored, "id = ?", profile.ID).Error)
	assert.Nil(t, stored.MagicLinkToken)
	assert.Nil(t, stored.MagicLinkExpires)

	_, err = ConsumeMagicLink(db, token)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestConsumeMagicLinkExpired(t *testing.T) {
	db := newTestDB(t)
	profile := createProfile(t, db, "expired@example.com")

	token, err := IssueMagicLink(db, profile)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, db.Model(profile).Update("magic_link_expires", past).Error)

	_, err = ConsumeMagicLink(db, token)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	// An expired token is rejected but not cleared until a new one is issued.
	var stored models.CustomerProfile
	require.NoError(t, db.First(&stored, "id = ?", profile.ID).Error)
	require.NotNil(t, stored.MagicLinkToken)
	assert.False(t, stored.HasLiveMagicLink(time.Now().UTC()))
}

func TestConsumeMagicLinkUnknownAndEmpty(t *testing.T) {
	db := newTestDB(t)

	_, err := ConsumeMagicLink(db, "")
	assert.ErrorIs(t, err, ErrLinkNotFound)

	_, err = ConsumeMagicLink(db, "no-such-token-ever-issued")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

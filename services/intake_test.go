package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"wellfield-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSubmitFirstContact(t *testing.T) {
	t.Setenv("CONTACT_INBOX", "owner@example.com")
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewIntakeService(db, mailer)

	contact, err := svc.Submit(ContactInput{
		Name:    "Jordan Wells",
		Email:   "jordan@example.com",
		Subject: "Consultation",
		Message: "I'd like to book a consultation.",
	})
	require.NoError(t, err)
	assert.False(t, contact.WhenSent.IsZero())
	assert.False(t, contact.Replied)

	var user models.User
	require.NoError(t, db.Where("username = ?", "jordan@example.com").First(&user).Error)
	assert.Equal(t, "Jordan", user.FirstName)
	assert.Equal(t, "Wells", user.LastName)
	assert.Empty(t, user.Password)
	assert.True(t, user.InGroup(db, models.GroupCustomers))

	var profile models.CustomerProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Consultation", profile.Interest)
	require.NotNil(t, profile.RecentContact)
	assert.True(t, profile.HasLiveMagicLink(time.Now().UTC()))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "jordan@example.com", msg.ReplyTo)
	assert.Equal(t, "From: jordan@example.com Regarding: Consultation", msg.Subject)
	assert.Contains(t, msg.Body, "I'd like to book a consultation.")
}

func TestSubmitRepeatContact(t *testing.T) {
	t.Setenv("CONTACT_INBOX", "owner@example.com")
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewIntakeService(db, mailer)

	_, err := svc.Submit(ContactInput{
		Name:    "Jordan Wells",
		Email:   "jordan@example.com",
		Subject: "Consultation",
		Message: "First message.",
	})
	require.NoError(t, err)

	var first models.CustomerProfile
	require.NoError(t, db.Joins("JOIN users ON users.id = customer_profiles.user_id").
		Where("users.username = ?", "jordan@example.com").First(&first).Error)
	firstToken := first.MagicLinkToken

	_, err = svc.Submit(ContactInput{
		Name:    "Jordan Wells",
		Email:   "jordan@example.com",
		Subject: "Something else entirely",
		Message: "Second message.",
	})
	require.NoError(t, err)

	var userCount, profileCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.CustomerProfile{}).Count(&profileCount)
	assert.EqualValues(t, 1, userCount)
	assert.EqualValues(t, 1, profileCount)

	var second models.CustomerProfile
	require.NoError(t, db.First(&second, "id = ?", first.ID).Error)

	// Interest stays what it was on first contact and the existing magic
	// link is untouched; only recent_contact moves.
	assert.Equal(t, "Consultation", second.Interest)
	require.NotNil(t, second.MagicLinkToken)
	assert.Equal(t, *firstToken, *second.MagicLinkToken)
	require.NotNil(t, second.RecentContact)
	assert.True(t, second.RecentContact.After(*first.RecentContact) ||
		second.RecentContact.Equal(*first.RecentContact))

	var contactCount int64
	db.Model(&models.Contact{}).Count(&contactCount)
	assert.EqualValues(t, 2, contactCount)
	assert.Len(t, mailer.sent, 2)
}

func TestSubmitCaseSensitiveEmailMatching(t *testing.T) {
	t.Setenv("CONTACT_INBOX", "owner@example.com")
	db := newTestDB(t)
	svc := NewIntakeService(db, &fakeMailer{})

	_, err := svc.Submit(ContactInput{
		Name: "A", Email: "Person@Example.com", Subject: "Hi", Message: "m",
	})
	require.NoError(t, err)
	_, err = svc.Submit(ContactInput{
		Name: "A", Email: "person@example.com", Subject: "Hi", Message: "m",
	})
	require.NoError(t, err)

	// Usernames match exactly, so differing case yields distinct accounts.
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.EqualValues(t, 2, userCount)
}

func TestSubmitLosingConcurrentFirstContact(t *testing.T) {
	t.Setenv("CONTACT_INBOX", "owner@example.com")
	db := newTestDB(t)
	mailer := &fakeMailer{}
	svc := NewIntakeService(db, mailer)

	// Simulate a concurrent submission winning the user insert: the moment
	// the workflow's lookup misses, slip the winner's row in on the same
	// connection so the workflow's own insert hits the unique index and has
	// to fall back to the fetched row.
	var raced bool
	err := db.Callback().Query().After("gorm:query").Register("race_user_insert", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "users" || !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return
		}
		raced = true
		winner := models.User{Username: "race@example.com", Email: "race@example.com", IsActive: true}
		sess := tx.Session(&gorm.Session{NewDB: true})
		sess.Error = nil
		if err := sess.Create(&winner).Error; err != nil {
			t.Errorf("failed to insert conflicting row: %v", err)
		}
	})
	require.NoError(t, err)

	contact, err := svc.Submit(ContactInput{
		Name:    "Robin Race",
		Email:   "race@example.com",
		Subject: "Consultation",
		Message: "Hello.",
	})
	require.NoError(t, err)
	require.NotNil(t, contact)
	require.True(t, raced, "the conflicting insert never fired")

	// The loser adopts the winner's account instead of failing.
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.EqualValues(t, 1, userCount)

	var user models.User
	require.NoError(t, db.Where("username = ?", "race@example.com").First(&user).Error)
	assert.True(t, user.InGroup(db, models.GroupCustomers))

	var profileCount int64
	db.Model(&models.CustomerProfile{}).Count(&profileCount)
	assert.EqualValues(t, 1, profileCount)

	require.Len(t, mailer.sent, 1)
}

func TestSubmitValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewIntakeService(db, &fakeMailer{})

	cases := []struct {
		name  string
		input ContactInput
		field string
	}{
		{"missing name", ContactInput{Email: "a@b.com", Subject: "s", Message: "m"}, "name"},
		{"bad email", ContactInput{Name: "n", Email: "not-an-email", Subject: "s", Message: "m"}, "email"},
		{"missing subject", ContactInput{Name: "n", Email: "a@b.com", Message: "m"}, "subject"},
		{"missing message", ContactInput{Name: "n", Email: "a@b.com", Subject: "s"}, "message"},
		{"message too long", ContactInput{Name: "n", Email: "a@b.com", Subject: "s",
			Message: strings.Repeat("x", 5001)}, "message"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(tc.input)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, tc.field)
		})
	}

	var contactCount int64
	db.Model(&models.Contact{}).Count(&contactCount)
	assert.EqualValues(t, 0, contactCount)
}

func TestSubmitSurvivesMailFailure(t *testing.T) {
	t.Setenv("CONTACT_INBOX", "owner@example.com")
	db := newTestDB(t)
	mailer := &fakeMailer{sendErr: fmt.Errorf("graph unavailable")}
	svc := NewIntakeService(db, mailer)

	contact, err := svc.Submit(ContactInput{
		Name:    "Jordan Wells",
		Email:   "jordan@example.com",
		Subject: "Consultation",
		Message: "Hello.",
	})
	require.NoError(t, err)

	// The mail runs after commit; its failure never rolls anything back.
	var stored models.Contact
	require.NoError(t, db.First(&stored, "id = ?", contact.ID).Error)

	var profileCount int64
	db.Model(&models.CustomerProfile{}).Count(&profileCount)
	assert.EqualValues(t, 1, profileCount)
}

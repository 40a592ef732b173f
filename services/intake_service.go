// services/intake_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"wellfield-backend/metrics"
	"wellfield-backend/models"
	"wellfield-backend/utils"

	"gorm.io/gorm"
)

// ContactInput is a parsed contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// IntakeService runs the contact submission workflow: one transaction that
// records the message, upserts the sender's User/CustomerProfile pair, issues
// a magic link for first-time contacts and defers the notification email to
// after commit.
type IntakeService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewIntakeService(db *gorm.DB, mailer Mailer) *IntakeService {
	return &IntakeService{db: db, mailer: mailer}
}

func (s *IntakeService) validate(in *ContactInput) *ValidationError {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	ve := newValidationError()
	if in.Name == "" || len(in.Name) > 255 {
		ve.Fields["name"] = "name is required and must not exceed 255 characters"
	}
	if !utils.ValidateEmail(in.Email) {
		ve.Fields["email"] = "invalid email address"
	}
	if in.Subject == "" || len(in.Subject) > 255 {
		ve.Fields["subject"] = "subject is required and must not exceed 255 characters"
	}
	if in.Message == "" {
		ve.Fields["message"] = "message is required"
	} else if len(in.Message) > 5000 {
		ve.Fields["message"] = "message must not exceed 5000 characters"
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// Submit processes one contact form submission. Every persistence step runs
// in a single transaction; the notification email runs from a post-commit
// hook list and its failure never surfaces to the submitter.
func (s *IntakeService) Submit(in ContactInput) (*models.Contact, error) {
	if ve := s.validate(&in); ve != nil {
		return nil, ve
	}

	var contact models.Contact
	var postCommit []func()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		contact = models.Contact{
			Name:     in.Name,
			Email:    in.Email,
			Subject:  in.Subject,
			Message:  in.Message,
			WhenSent: now,
		}
		if err := tx.Create(&contact).Error; err != nil {
			return fmt.Errorf("failed to save contact message: %w", err)
		}

		user, _, err := getOrCreateUser(tx, in)
		if err != nil {
			return err
		}

		profile, profileCreated, err := getOrCreateProfile(tx, user, in, now)
		if err != nil {
			return err
		}

		if profileCreated {
			if _, err := IssueMagicLink(tx, profile); err != nil {
				return fmt.Errorf("failed to issue magic link: %w", err)
			}
		} else {
			// Repeat contact: bump recent_contact only. Interest keeps its
			// original value on purpose.
			if err := tx.Model(profile).Update("recent_contact", now).Error; err != nil {
				return err
			}
		}

		if err := ensureGroupMembership(tx, &user, models.GroupCustomers); err != nil {
			return err
		}

		postCommit = append(postCommit, func() {
			s.sendOwnerNotification(contact)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The hooks run only after a successful commit; a rolled-back
	// transaction sends nothing.
	for _, hook := range postCommit {
		hook()
	}

	metrics.RecordContactSubmission()
	log.Printf("[CONTACT] Submission saved: id=%s, email=%s", contact.ID, contact.Email)
	return &contact, nil
}

// getOrCreateUser resolves the User keyed by username (the submitted email,
// matched exactly). Two concurrent first submissions race on the insert; the
// loser hits the unique constraint and falls back to the winner's row.
func getOrCreateUser(tx *gorm.DB, in ContactInput) (models.User, bool, error) {
	var user models.User
	err := tx.Where("username = ?", in.Email).First(&user).Error
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, false, err
	}

	first, last := splitName(in.Name)
	user = models.User{
		Username:  in.Email,
		Email:     in.Email,
		FirstName: first,
		LastName:  last,
		IsActive:  true,
	}
	// The insert runs under a savepoint: on PostgreSQL a unique violation
	// aborts the surrounding transaction, and rolling back to the savepoint
	// keeps it usable for the re-fetch.
	err = tx.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = tx.Where("username = ?", in.Email).First(&user).Error
			return user, false, err
		}
		return user, false, err
	}
	return user, true, nil
}

func getOrCreateProfile(tx *gorm.DB, user models.User, in ContactInput, now time.Time) (*models.CustomerProfile, bool, error) {
	var profile models.CustomerProfile
	err := tx.Where("user_id = ?", user.ID).First(&profile).Error
	if err == nil {
		return &profile, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	profile = models.CustomerProfile{
		UserID:        user.ID,
		FirstContact:  now,
		RecentContact: &now,
		Interest:      in.Subject,
	}
	// Savepoint, same reason as getOrCreateUser.
	err = tx.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&profile).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = tx.Where("user_id = ?", user.ID).First(&profile).Error
			return &profile, false, err
		}
		return nil, false, err
	}
	return &profile, true, nil
}

// ensureGroupMembership adds the user to a named group, creating the group on
// first use. Adding an existing member is a no-op.
func ensureGroupMembership(tx *gorm.DB, user *models.User, name string) error {
	var group models.Group
	err := tx.Where("name = ?", name).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		group = models.Group{Name: name}
		// Savepoint, same reason as getOrCreateUser.
		err = tx.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&group).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				err = tx.Where("name = ?", name).First(&group).Error
			}
			if err != nil {
				return err
			}
		}
	} else if err != nil {
		return err
	}

	var count int64
	if err := tx.Table("user_groups").
		Where("user_id = ? AND group_id = ?", user.ID, group.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return tx.Model(user).Association("Groups").Append(&group)
	}
	return nil
}

// splitName splits a submitted full name at the first space.
func splitName(name string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// sendOwnerNotification emails the site inbox about a new message, with
// reply-to pointing at the visitor. Failures are logged only.
func (s *IntakeService) sendOwnerNotification(contact models.Contact) {
	inbox := os.Getenv("CONTACT_INBOX")
	if inbox == "" {
		inbox = os.Getenv("EMAIL_HOST_USER")
	}
	if inbox == "" {
		log.Printf("[CONTACT] No inbox configured, skipping notification for %s", contact.ID)
		return
	}

	msg := MailMessage{
		To:      inbox,
		ReplyTo: contact.Email,
		Subject: fmt.Sprintf("From: %s Regarding: %s", contact.Email, contact.Subject),
		Body: fmt.Sprintf(
			"Contact Form Submission:\n\nFrom: %s <%s>\nSubject: %s\n\nMessage:\n%s",
			contact.Name, contact.Email, contact.Subject, contact.Message,
		),
	}

	if err := s.mailer.Send(msg); err != nil {
		log.Printf("[CONTACT] Warning: failed to send notification email for %s: %v", contact.ID, err)
		metrics.RecordMailDelivery(false)
		return
	}
	metrics.RecordMailDelivery(true)
}

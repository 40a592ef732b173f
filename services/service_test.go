package services

import (
	"database/sql"
	"testing"
	"time"

	"wellfield-backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// newTestDB opens an isolated in-memory database. A single connection keeps
// every query on the same in-memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: ":memory:", Conn: sqlDB}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Contact{},
		&models.CustomerProfile{},
		&models.Appointment{},
		&models.NotificationLog{},
		&models.Content{},
		&models.ContentMedia{},
		&models.Product{},
		&models.Price{},
	))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// fakeMailer records sent messages instead of talking to Graph.
type fakeMailer struct {
	sent    []MailMessage
	sendErr error
}

func (f *fakeMailer) Send(msg MailMessage) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) IsEnabled() bool { return true }

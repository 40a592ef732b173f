package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

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
	require.NoError(t, db.AutoMigrate(&User{}, &Group{}))

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestInGroup(t *testing.T) {
	db := newTestDB(t)

	user := User{Username: "m@example.com", Email: "m@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	group := Group{Name: GroupManagers}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Model(&user).Association("Groups").Append(&group))

	assert.True(t, user.InGroup(db, GroupManagers))
	assert.False(t, user.InGroup(db, GroupCustomers))
}

func TestInGroupSurvivesQueryFailure(t *testing.T) {
	db := newTestDB(t)

	user := User{Username: "m@example.com", Email: "m@example.com", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	// A broken lookup must degrade to non-membership, not panic.
	require.NoError(t, db.Migrator().DropTable("user_groups"))
	assert.False(t, user.InGroup(db, GroupManagers))
}

package config

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

var DB *gorm.DB

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// ConnectDB opens the configured database. DB_URL starting with postgres://
// (or a key=value DSN) selects PostgreSQL; anything else is treated as a
// SQLite path, which keeps local development dependency-free.
func ConnectDB() {
	dsn := os.Getenv("DB_URL")

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres") || strings.Contains(dsn, "host=") {
		dialector = postgres.Open(dsn)
	} else {
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			path = "wellfield.db"
		}
		sqlDB, err := sql.Open("sqlite", path)
		if err != nil {
			panic("Failed to open SQLite database: " + err.Error())
		}
		dialector = sqlite.Dialector{DriverName: "sqlite", DSN: path, Conn: sqlDB}
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		panic("Failed to connect database")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
	}

	log.Println("Database connected")
	DB = db
}

package db

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/carebridge/backend/internal/config"
	"github.com/carebridge/backend/internal/models"
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

// Connect initializes the database connection. DATABASE_URL selects the
// backend: a "sqlite://" prefix opens a SQLite file through the pure Go
// driver, anything else is treated as a postgres DSN.
func Connect() {
	url := config.Get().DB.URL

	var dialector gorm.Dialector
	if path, ok := strings.CutPrefix(url, "sqlite://"); ok {
		sqlDB, err := sql.Open("sqlite", path)
		if err != nil {
			log.Fatal("Failed to open SQLite database:", err)
		}
		dialector = sqlite.Dialector{DriverName: "sqlite", DSN: path, Conn: sqlDB}
	} else {
		dialector = postgres.Open(url)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if _, isPostgres := dialector.(*postgres.Dialector); isPostgres {
		sqlDB, err := DB.DB()
		if err != nil {
			log.Fatal("Failed to get underlying sql.DB:", err)
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
	}

	fmt.Println("Database connected successfully")
}

// AutoMigrate runs database migrations for all models.
func AutoMigrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.UserRole{},
		&models.Lead{},
		&models.LeadNote{},
		&models.LeadTag{},
		&models.OnboardingQuestion{},
		&models.NotificationSettings{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("Database migrated successfully")
}

// GetDB returns the database instance.
func GetDB() *gorm.DB {
	return DB
}

package main

import (
	"log"

	"github.com/carebridge/backend/internal/config"
	"github.com/carebridge/backend/internal/db"
	"github.com/carebridge/backend/internal/logger"
)

func main() {
	logger.Initialize()

	if _, err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db.Connect()

	// Run migrations
	log.Println("Running database migrations...")
	db.AutoMigrate()

	log.Println("✅ Database migrations completed successfully!")
}

package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/carebridge/backend/internal/config"
	"github.com/carebridge/backend/internal/db"
	"github.com/carebridge/backend/internal/logger"
	"github.com/carebridge/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserData represents the structure of users in the JSON file
type UserData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	CanCrud  bool   `json:"canManageCrud"`
}

// QuestionData represents the structure of questions in the JSON file
type QuestionData struct {
	StepNumber   int      `json:"stepNumber"`
	FieldName    string   `json:"fieldName"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

// JSONData represents the structure of the JSON files
type JSONData struct {
	Users     []UserData     `json:"users"`
	Questions []QuestionData `json:"questions"`
}

func main() {
	logger.Initialize()

	if _, err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db.Connect()

	// Run migrations first
	log.Println("Running database migrations...")
	db.AutoMigrate()

	// Seed database with sample data
	log.Println("Seeding database with sample data...")

	if err := seedUsers(); err != nil {
		log.Printf("Error seeding users: %v", err)
	}
	if err := seedQuestions(); err != nil {
		log.Printf("Error seeding questions: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

func seedUsers() error {
	// Read users JSON file
	usersData, err := os.ReadFile("data/initial-users.json")
	if err != nil {
		return err
	}

	var jsonData JSONData
	if err := json.Unmarshal(usersData, &jsonData); err != nil {
		return err
	}

	for _, userData := range jsonData.Users {
		// Hash password
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Error hashing password for %s: %v", userData.Email, err)
			continue
		}

		if !models.ValidRole(userData.Role) {
			log.Printf("Unknown role %s for user %s, defaulting to manager", userData.Role, userData.Email)
			userData.Role = string(models.RoleManager)
		}

		// Check if user already exists
		var existingUser models.User
		if err := db.DB.Where("email = ?", userData.Email).First(&existingUser).Error; err == nil {
			log.Printf("⚠️  User already exists: %s", userData.Email)
			continue
		}

		user := models.User{
			Email:    userData.Email,
			Password: string(hashedPassword),
		}
		if err := db.DB.Create(&user).Error; err != nil {
			log.Printf("Error creating user %s: %v", user.Email, err)
			continue
		}

		profile := models.Profile{
			ID:       user.ID,
			Email:    &userData.Email,
			FullName: &userData.FullName,
		}
		if err := db.DB.Create(&profile).Error; err != nil {
			log.Printf("Error creating profile for %s: %v", user.Email, err)
		}

		role := models.UserRole{
			UserID:        user.ID,
			Role:          models.AppRole(userData.Role),
			CanManageCrud: userData.CanCrud,
		}
		if err := db.DB.Create(&role).Error; err != nil {
			log.Printf("Error assigning role for %s: %v", user.Email, err)
		}

		settings := models.NotificationSettings{
			UserID:                      user.ID,
			EmailNotifications:          true,
			LeadAssignmentNotifications: true,
		}
		if err := db.DB.Create(&settings).Error; err != nil {
			log.Printf("Error creating settings for %s: %v", user.Email, err)
		}

		log.Printf("✅ Created user: %s (%s)", user.Email, userData.Role)
	}

	return nil
}

func seedQuestions() error {
	questionsData, err := os.ReadFile("data/onboarding-questions.json")
	if err != nil {
		return err
	}

	var jsonData JSONData
	if err := json.Unmarshal(questionsData, &jsonData); err != nil {
		return err
	}

	for _, questionData := range jsonData.Questions {
		var existing models.OnboardingQuestion
		if err := db.DB.Where("step_number = ? AND field_name = ?", questionData.StepNumber, questionData.FieldName).
			First(&existing).Error; err == nil {
			log.Printf("⚠️  Question already exists for step %d", questionData.StepNumber)
			continue
		}

		options, err := json.Marshal(questionData.Options)
		if err != nil {
			log.Printf("Error encoding options for step %d: %v", questionData.StepNumber, err)
			continue
		}

		question := models.OnboardingQuestion{
			StepNumber:   questionData.StepNumber,
			FieldName:    questionData.FieldName,
			QuestionText: questionData.QuestionText,
			Options:      string(options),
			IsActive:     true,
		}
		if err := db.DB.Create(&question).Error; err != nil {
			log.Printf("Error creating question for step %d: %v", questionData.StepNumber, err)
			continue
		}

		log.Printf("✅ Created question: step %d (%s)", question.StepNumber, question.FieldName)
	}

	return nil
}

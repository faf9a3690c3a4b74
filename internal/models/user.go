package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an authentication identity. Business metadata lives on Profile,
// authorization on UserRole.
type User struct {
	ID         string         `json:"id" gorm:"type:uuid;primaryKey"`
	Email      string         `json:"email" gorm:"uniqueIndex;not null"`
	Password   string         `json:"-" gorm:"not null"`
	TOTPSecret *string        `json:"-"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}

// Profile holds contact/business metadata, 1:1 with a user (shared ID).
type Profile struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	Email       *string   `json:"email"`
	FullName    *string   `json:"fullName"`
	PhoneNumber *string   `json:"phoneNumber"`
	CompanyName *string   `json:"companyName"`
	PostalCode  *string   `json:"postalCode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Profile) TableName() string {
	return "profiles"
}

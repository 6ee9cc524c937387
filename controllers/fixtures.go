package controllers

import (
	"time"

	"github.com/Defendu/models"
	"golang.org/x/crypto/bcrypt"
)

// Test fixture data for use in tests

// MockUser creates a sample member profile for testing
func MockUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID: 1,
		Username:        "testuser",
		First_Name:      "Test",
		Last_Name:       "User",
		Email:           "test@example.com",
		Role:            models.RoleUser,
		Created_By:      1,
		Updated_By:      1,
		Datetime_Create: time.Now(),
		Datetime_Update: time.Now(),
	}
}

// MockUserWithPassword creates a sample user with a bcrypt hashed password.
// Password is "password123" - use this in tests
func MockUserWithPassword() models.UserProfile {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := MockUser()
	user.Password = string(hashedPassword)
	return user
}

// MockTrainerUser creates a sample trainer for testing
func MockTrainerUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID: 2,
		Username:        "trainer",
		First_Name:      "Trainer",
		Last_Name:       "User",
		Email:           "trainer@example.com",
		Role:            models.RoleTrainer,
		Created_By:      1,
		Updated_By:      1,
		Datetime_Create: time.Now(),
		Datetime_Update: time.Now(),
	}
}

// MockAdminUser creates a sample admin user for testing
func MockAdminUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID: 3,
		Username:        "adminuser",
		First_Name:      "Admin",
		Last_Name:       "User",
		Email:           "admin@example.com",
		Role:            models.RoleAdmin,
		Created_By:      1,
		Updated_By:      1,
		Datetime_Create: time.Now(),
		Datetime_Update: time.Now(),
	}
}

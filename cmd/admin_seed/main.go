// Command admin_seed creates the initial admin account from environment
// variables. Safe to rerun: an existing admin is left untouched.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/kalu-Peter/BidKE-sub002/internal/config"
	"github.com/kalu-Peter/BidKE-sub002/internal/models"
	"github.com/kalu-Peter/BidKE-sub002/internal/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()

	adminUsername := strings.ToLower(os.Getenv("ADMIN_USERNAME"))
	adminEmail := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_USERNAME, ADMIN_EMAIL, and ADMIN_PASSWORD must be set in environment")
	}

	db, err := repositories.NewDB(repositories.DefaultDBConfig())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Failed to close database connection: %v", err)
			}
		}
	}()

	var existing models.User
	if err := db.Where("username = ?", adminUsername).First(&existing).Error; err == nil {
		log.Println("Admin user already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := models.User{
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: string(hash),
		IsVerified:   true,
		Status:       models.StatusActive,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		roles := []models.RoleAssignment{
			{UserID: admin.ID, Role: models.RoleBuyer, IsPrimary: true, Status: models.RoleStatusActive, CanLogin: true},
			{UserID: admin.ID, Role: models.RoleAdmin, Status: models.RoleStatusActive, CanLogin: true},
		}
		return tx.Create(&roles).Error
	})
	if err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Println("Admin account created successfully")
}

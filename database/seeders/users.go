package seeders

import (
	"errors"

	"dukaan/app/models"
	"dukaan/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("admin_user", SeedAdminUser)
}

// SeedAdminUser creates a default admin account for local development.
// Idempotent: it does nothing when the account already exists.
func SeedAdminUser(db *gorm.DB) error {
	var existing models.User
	err := db.Where("email = ?", "admin@dukaan.local").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword("admin12345")
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Admin",
		Email:    "admin@dukaan.local",
		Password: hash,
		IsAdmin:  true,
	}
	return db.Create(&admin).Error
}

package repositories

import (
	"errors"
	"fmt"
	"time"

	"dukaan/app/models"
	"dukaan/pkg/httperr"
	"dukaan/pkg/logger"
	"dukaan/pkg/metrics"
	"gorm.io/gorm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user. The email must not already be registered;
// both the pre-check and the unique index guard against duplicates, so a
// racing insert still surfaces as a validation failure.
func (r *UserRepository) Create(name, email, passwordHash string) (*models.User, error) {
	var existing models.User
	err := r.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, httperr.Validation("Email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user create: lookup email: %w", err)
	}

	user := models.User{Name: name, Email: email, Password: passwordHash}
	if err := r.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, httperr.Validation("Email already registered")
		}
		return nil, fmt.Errorf("user create: %w", err)
	}

	return &user, nil
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.UserNotFound()
		}
		return nil, fmt.Errorf("user find by id: %w", err)
	}
	return &user, nil
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.UserNotFound()
		}
		return nil, fmt.Errorf("user find by email: %w", err)
	}
	return &user, nil
}

// All returns every user.
func (r *UserRepository) All() ([]models.User, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var users []models.User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	return users, nil
}

// Count returns the total number of users.
func (r *UserRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("user count: %w", err)
	}
	return n, nil
}

// Orders returns the given user's orders. Fails with UserNotFound when the
// user is absent.
func (r *UserRepository) Orders(userID uint) (*models.User, []models.Order, error) {
	user, err := r.FindByID(userID)
	if err != nil {
		return nil, nil, err
	}

	var orders []models.Order
	if err := r.db.Where("user_id = ?", userID).Find(&orders).Error; err != nil {
		return nil, nil, fmt.Errorf("user orders: %w", err)
	}
	return user, orders, nil
}

// CreateWithOrders inserts a user and one order per item as a single unit
// of work. On any failure every insert is rolled back and the caller sees
// a plain "Transaction failed". The underlying cause is kept in the logs
// only, never in the response.
func (r *UserRepository) CreateWithOrders(name, email string, items []string) (*models.User, error) {
	var user models.User

	err := r.db.Transaction(func(tx *gorm.DB) error {
		user = models.User{Name: name, Email: email}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		for _, item := range items {
			order := models.Order{Item: item, UserID: user.ID}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		logger.Debug("user transaction rolled back", "email", email, "cause", err.Error())
		return nil, httperr.Validation("Transaction failed")
	}

	return &user, nil
}

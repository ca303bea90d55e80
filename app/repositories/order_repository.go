package repositories

import (
	"errors"
	"fmt"
	"time"

	"dukaan/app/models"
	"dukaan/pkg/httperr"
	"dukaan/pkg/metrics"
	"gorm.io/gorm"
)

// attachedOrderItem is the label given to orders created through the
// attach-products flow.
const attachedOrderItem = "Cloths Order"

// OrderRepository handles database operations for Order and the
// order_product association.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order for the given user. The user's existence is
// not pre-checked; the foreign-key constraint is the only guard, and its
// violation is surfaced as a validation failure.
func (r *OrderRepository) Create(item string, userID uint) (*models.Order, error) {
	order := models.Order{Item: item, UserID: userID}
	if err := r.db.Create(&order).Error; err != nil {
		if isForeignKeyViolation(err) {
			return nil, httperr.Validation("Invalid data provided")
		}
		return nil, fmt.Errorf("order create: %w", err)
	}
	return &order, nil
}

// All returns every order sorted by item, ascending.
func (r *OrderRepository) All() ([]models.Order, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var orders []models.Order
	if err := r.db.Order("item asc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("order list: %w", err)
	}
	return orders, nil
}

// FindByID looks up an order by primary key.
func (r *OrderRepository) FindByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.OrderNotFound()
		}
		return nil, fmt.Errorf("order find by id: %w", err)
	}
	return &order, nil
}

// Count returns the total number of orders.
func (r *OrderRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("order count: %w", err)
	}
	return n, nil
}

// AttachProducts creates a new order for the user and links one product
// per distinct name, finding-or-creating each product by its unique name.
// The whole sequence runs in one transaction. A name repeated within the
// call attaches once: the association table's primary key is the
// (order_id, product_id) pair, so a duplicate link must be idempotent,
// not an error.
func (r *OrderRepository) AttachProducts(userID uint, names []string) (*models.Order, error) {
	var order models.Order

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.UserNotFound()
			}
			return fmt.Errorf("attach products: load user: %w", err)
		}

		order = models.Order{Item: attachedOrderItem, UserID: userID}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("attach products: create order: %w", err)
		}

		linked := make(map[uint]bool, len(names))
		for _, name := range names {
			product, err := findOrCreateProduct(tx, name)
			if err != nil {
				return err
			}
			if linked[product.ID] {
				continue
			}

			if err := tx.Model(&order).Association("Products").Append(product); err != nil {
				return fmt.Errorf("attach products: link %q: %w", name, err)
			}
			linked[product.ID] = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// ForUserWithProducts returns the user's orders with the name of every
// linked product preloaded. Fails with UserNotFound when the user is
// absent.
func (r *OrderRepository) ForUserWithProducts(userID uint) (*models.User, []models.Order, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, httperr.UserNotFound()
		}
		return nil, nil, fmt.Errorf("orders with products: load user: %w", err)
	}

	var orders []models.Order
	err := r.db.Preload("Products").
		Where("user_id = ?", userID).
		Find(&orders).Error
	if err != nil {
		return nil, nil, fmt.Errorf("orders with products: %w", err)
	}

	return &user, orders, nil
}

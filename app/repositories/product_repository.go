package repositories

import (
	"errors"
	"fmt"

	"dukaan/app/models"
	"dukaan/pkg/httperr"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByName looks up a product by its unique name.
func (r *ProductRepository) FindByName(name string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Where("name = ?", name).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ProductNotFound()
		}
		return nil, fmt.Errorf("product find by name: %w", err)
	}
	return &product, nil
}

// FindOrCreate returns the product with the given name, creating it if
// absent. Two concurrent callers may both miss the lookup and race the
// insert; the loser hits the unique index and re-fetches the winner's row
// instead of surfacing the constraint violation.
func (r *ProductRepository) FindOrCreate(name string) (*models.Product, error) {
	return findOrCreateProduct(r.db, name)
}

func findOrCreateProduct(db *gorm.DB, name string) (*models.Product, error) {
	var product models.Product
	err := db.Where("name = ?", name).First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product lookup %q: %w", name, err)
	}

	// The insert gets its own (nested) transaction. When db is already a
	// transaction this becomes a savepoint, so a unique violation rolls
	// back only the insert; postgres would otherwise abort the whole
	// enclosing transaction and the re-fetch below could never succeed.
	product = models.Product{Name: name}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&product).Error
	})
	if err == nil {
		return &product, nil
	}
	if !isUniqueViolation(err) {
		return nil, fmt.Errorf("product create %q: %w", name, err)
	}

	// Lost the create race; the row exists now.
	product = models.Product{}
	if err := db.Where("name = ?", name).First(&product).Error; err != nil {
		return nil, fmt.Errorf("product refetch %q: %w", name, err)
	}
	return &product, nil
}

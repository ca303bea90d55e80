package models

import "gorm.io/gorm"

// Order belongs to exactly one user, set at creation. Products attach via
// the order_product join table; its composite primary key (order_id,
// product_id) makes each pairing unique.
type Order struct {
	gorm.Model
	Item     string    `gorm:"size:255;not null;index" json:"item"`
	UserID   uint      `gorm:"not null;index"          json:"user_id"`
	Products []Product `gorm:"many2many:order_product" json:"products,omitempty"`
}

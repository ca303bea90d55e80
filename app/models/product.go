package models

import "gorm.io/gorm"

// Product is a catalogue entry identified by its unique name.
type Product struct {
	gorm.Model
	Name   string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Orders []Order `gorm:"many2many:order_product"       json:"-"`
}

package models

import "gorm.io/gorm"

// User is the account model. The password column stores a bcrypt hash and
// is never serialised.
type User struct {
	gorm.Model
	Name     string  `gorm:"size:255;not null"       json:"name"`
	Email    string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string  `gorm:"size:255;not null"       json:"-"`
	IsAdmin  bool    `gorm:"not null;default:false"  json:"is_admin"`
	Orders   []Order `json:"orders,omitempty"`
}

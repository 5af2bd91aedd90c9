package model

import (
	"time"

	"gorm.io/gorm"
)

// Role groups users for API/menu entitlement purposes. Roles are shared
// catalog entities, not tenant-scoped.
type Role struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(50);not null"`
	Code        string         `json:"code" gorm:"type:varchar(50);uniqueIndex"`
	Description string         `json:"description" gorm:"type:varchar(200)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Users []User `json:"users,omitempty" gorm:"many2many:user_roles"`
	Apis  []Api  `json:"apis,omitempty" gorm:"many2many:role_apis"`
	Menus []Menu `json:"menus,omitempty" gorm:"many2many:role_menus"`
}

// TableName returns the table name in the shared schema
func (Role) TableName() string {
	return "roles"
}

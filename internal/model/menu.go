package model

import (
	"time"
)

// Menu types
const (
	MenuTypeCatalog = "catalog"
	MenuTypeMenu    = "menu"
	MenuTypeButton  = "button"
)

// Menu is a shared catalog entity describing one navigable UI entry.
type Menu struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(50);not null"`
	MenuType  string    `json:"menu_type" gorm:"type:varchar(20);not null"`
	Path      string    `json:"path" gorm:"type:varchar(100);not null"`
	Component string    `json:"component" gorm:"type:varchar(100);not null"`
	Icon      string    `json:"icon" gorm:"type:varchar(50)"`
	Order     int       `json:"order" gorm:"column:menu_order;default:0"`
	ParentID  *uint     `json:"parent_id,omitempty" gorm:"index"`
	IsHidden  bool      `json:"is_hidden" gorm:"default:false"`
	KeepAlive bool      `json:"keepalive" gorm:"default:false"`
	Redirect  string    `json:"redirect" gorm:"type:varchar(200)"`
	IsEnabled bool      `json:"is_enabled" gorm:"default:true"`
	IsDeleted bool      `json:"is_deleted" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name in the shared schema
func (Menu) TableName() string {
	return "menus"
}

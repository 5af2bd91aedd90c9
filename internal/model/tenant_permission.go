package model

import (
	"time"
)

// TenantPermission grants a tenant access to exactly one menu or one api.
// The check constraint rejects rows that reference both or neither.
type TenantPermission struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	MenuID    *uint     `json:"menu_id,omitempty" gorm:"index"`
	ApiID     *uint     `json:"api_id,omitempty" gorm:"index"`
	IsEnabled bool      `json:"is_enabled" gorm:"default:true"`
	IsDeleted bool      `json:"is_deleted" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
	Menu   *Menu  `json:"menu,omitempty" gorm:"foreignKey:MenuID"`
	Api    *Api   `json:"api,omitempty" gorm:"foreignKey:ApiID"`
}

// TableName returns the table name in the shared schema
func (TenantPermission) TableName() string {
	return "tenant_permissions"
}

// Valid reports whether exactly one of MenuID/ApiID is set. Mirrors the
// check_menu_or_api database constraint so invalid rows are rejected before
// they ever reach the insert.
func (p *TenantPermission) Valid() bool {
	return (p.MenuID != nil) != (p.ApiID != nil)
}

package model

import (
	"time"
)

// Tenant status values
const (
	TenantStatusActive    = "active"
	TenantStatusInactive  = "inactive"
	TenantStatusSuspended = "suspended"
)

// Tenant represents an isolated customer organization. Each non-deleted
// tenant owns exactly one database schema holding its business data.
type Tenant struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"type:varchar(100);not null"`
	SchemaName  string     `json:"schema_name" gorm:"type:varchar(100);uniqueIndex"`
	Status      string     `json:"status" gorm:"type:varchar(20);default:'active'"`
	Description string     `json:"description" gorm:"type:varchar(500)"`
	MaxUsers    int        `json:"max_users" gorm:"default:100"`
	ExpireDate  *time.Time `json:"expire_date,omitempty" gorm:"type:date"`
	IsDeleted   bool       `json:"is_deleted" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name in the shared schema
func (Tenant) TableName() string {
	return "tenants"
}

// Usable reports whether the tenant may serve requests. A tenant whose
// provisioning has not completed stays inactive and is never usable.
func (t *Tenant) Usable() bool {
	if t.IsDeleted || t.Status != TenantStatusActive {
		return false
	}
	if t.ExpireDate != nil && t.ExpireDate.Before(time.Now()) {
		return false
	}
	return true
}

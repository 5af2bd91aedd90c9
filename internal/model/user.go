package model

import (
	"time"

	"gorm.io/gorm"
)

// User types
const (
	UserTypeSuperAdmin  = "super_admin"
	UserTypeTenantAdmin = "tenant_admin"
	UserTypeNormalUser  = "normal_user"
)

// User represents an account in the shared schema. A user belongs to at most
// one tenant; superusers carry no tenant at all.
type User struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Username      string         `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Alias         string         `json:"alias" gorm:"type:varchar(50)"`
	Email         string         `json:"email" gorm:"type:varchar(100)"`
	Phone         string         `json:"phone" gorm:"type:varchar(20)"`
	Password      string         `json:"-" gorm:"type:varchar(100);not null"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	UserType      string         `json:"user_type" gorm:"type:varchar(20);default:'normal_user'"`
	IsSuperuser   bool           `json:"is_superuser" gorm:"default:false"`
	IsTenantAdmin bool           `json:"is_tenant_admin" gorm:"default:false"`
	LastLogin     *time.Time     `json:"last_login,omitempty"`
	DeptID        *uint          `json:"dept_id,omitempty"`
	TenantID      *uint          `json:"tenant_id,omitempty" gorm:"index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Roles  []Role  `json:"roles,omitempty" gorm:"many2many:user_roles"`
}

// TableName returns the table name in the shared schema
func (User) TableName() string {
	return "users"
}

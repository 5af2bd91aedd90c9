package model

import (
	"time"
)

// Api describes one routable endpoint (path + method) in the shared catalog.
// TenantPermission and role_apis rows reference it by id.
type Api struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Path        string    `json:"path" gorm:"type:varchar(200);not null;index:idx_apis_path_method"`
	Method      string    `json:"method" gorm:"type:varchar(10);not null;index:idx_apis_path_method"`
	Summary     string    `json:"summary" gorm:"type:varchar(200)"`
	Tags        string    `json:"tags" gorm:"type:varchar(100)"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	IsDeleted   bool      `json:"is_deleted" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name in the shared schema
func (Api) TableName() string {
	return "apis"
}

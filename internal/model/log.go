package model

import (
	"time"
)

// AuditLog records a mutating action performed by a user on a resource.
type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	Action       string    `json:"action" gorm:"type:varchar(50);not null"`
	ResourceType string    `json:"resource_type" gorm:"type:varchar(50);not null"`
	ResourceID   uint      `json:"resource_id" gorm:"not null"`
	Details      string    `json:"details" gorm:"type:text"`
	IPAddress    string    `json:"ip_address" gorm:"type:varchar(50)"`
	UserAgent    string    `json:"user_agent" gorm:"type:varchar(200)"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the table name in the shared schema
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AccessLog records one handled HTTP request.
type AccessLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       *uint     `json:"user_id,omitempty" gorm:"index"`
	Path         string    `json:"path" gorm:"type:varchar(200);not null"`
	Method       string    `json:"method" gorm:"type:varchar(10);not null"`
	StatusCode   int       `json:"status_code" gorm:"not null"`
	ResponseTime int64     `json:"response_time"` // milliseconds
	IPAddress    string    `json:"ip_address" gorm:"type:varchar(50)"`
	UserAgent    string    `json:"user_agent" gorm:"type:varchar(200)"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the table name in the shared schema
func (AccessLog) TableName() string {
	return "access_logs"
}

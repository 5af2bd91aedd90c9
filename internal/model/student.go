package model

import (
	"time"
)

// Student lives in a tenant schema, never in the shared one. Queries against
// it must run on a tenant-scoped handle; the table name is deliberately
// unqualified so the handle's search_path decides which schema is hit.
type Student struct {
	IDCard           string     `json:"id_card" gorm:"type:varchar(18);primaryKey"`
	StudentID        string     `json:"student_id" gorm:"type:varchar(50);uniqueIndex"`
	Name             string     `json:"name" gorm:"type:varchar(50);not null"`
	Gender           string     `json:"gender" gorm:"type:varchar(10)"`
	BirthDate        *time.Time `json:"birth_date,omitempty" gorm:"type:date"`
	AdmissionBatchID *uint      `json:"admission_batch_id,omitempty"`
	DepartmentID     *uint      `json:"department_id,omitempty"`
	DormitoryID      *uint      `json:"dormitory_id,omitempty"`
	Phone            string     `json:"phone" gorm:"type:varchar(20)"`
	Email            string     `json:"email" gorm:"type:varchar(100)"`
	Address          string     `json:"address" gorm:"type:varchar(200)"`
	Status           bool       `json:"status" gorm:"default:true"`
	ExtField1        string     `json:"ext_field1,omitempty" gorm:"type:varchar(200)"`
	ExtField2        string     `json:"ext_field2,omitempty" gorm:"type:varchar(200)"`
	ExtField3        string     `json:"ext_field3,omitempty" gorm:"type:varchar(200)"`
	ExtField4        string     `json:"ext_field4,omitempty" gorm:"type:varchar(200)"`
	ExtField5        string     `json:"ext_field5,omitempty" gorm:"type:varchar(200)"`
	ExtField6        string     `json:"ext_field6,omitempty" gorm:"type:varchar(200)"`
	ExtField7        string     `json:"ext_field7,omitempty" gorm:"type:varchar(200)"`
	ExtField8        string     `json:"ext_field8,omitempty" gorm:"type:varchar(200)"`
	ExtField9        string     `json:"ext_field9,omitempty" gorm:"type:varchar(200)"`
	ExtField10       string     `json:"ext_field10,omitempty" gorm:"type:varchar(200)"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the unqualified tenant-schema table name
func (Student) TableName() string {
	return "students"
}

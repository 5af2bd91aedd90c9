package permission

import (
	"errors"

	"registration-service/internal/model"

	"gorm.io/gorm"
)

// GormStore implements Store against the shared schema
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore on the shared database handle
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindAPIID(path, method string) (uint, bool, error) {
	var api model.Api
	err := s.db.
		Where("path = ? AND method = ? AND is_deleted = ?", path, method, false).
		First(&api).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return api.ID, true, nil
}

func (s *GormStore) TenantGrantEnabled(tenantID, apiID uint) (bool, error) {
	var count int64
	err := s.db.Model(&model.TenantPermission{}).
		Where("tenant_id = ? AND api_id = ? AND is_enabled = ? AND is_deleted = ?",
			tenantID, apiID, true, false).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) RoleHasAPI(userID, apiID uint) (bool, error) {
	var count int64
	err := s.db.Table("role_apis").
		Joins("JOIN user_roles ON user_roles.role_id = role_apis.role_id").
		Where("user_roles.user_id = ? AND role_apis.api_id = ?", userID, apiID).
		Count(&count).Error
	return count > 0, err
}

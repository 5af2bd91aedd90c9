package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"registration-service/internal/audit"
	"registration-service/internal/model"
	"registration-service/pkg/database"
	"registration-service/pkg/logger"
	"registration-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ListUsers lists users. Superusers see everyone; tenant admins see only
// their own tenant's users.
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)

	page, pageSize := pagination(c)
	isSuperuser, _ := c.Get("is_superuser").(bool)

	query := database.GetDB().Model(&model.User{})
	if !isSuperuser {
		tenantID, ok := c.Get("tenant_id").(uint)
		if !ok {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
		}
		query = query.Where("tenant_id = ?", tenantID)
	}
	if username := c.QueryParam("username"); username != "" {
		query = query.Where("username ILIKE ?", "%"+username+"%")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	var users []model.User
	if err := query.Preload("Roles").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		log.Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":     users,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// CreateUser creates a user inside a tenant, enforcing the tenant's max_users
// quota. Tenant admins may only create users in their own tenant.
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)

	actorID, _ := c.Get("user_id").(uint)
	isSuperuser, _ := c.Get("is_superuser").(bool)

	var req struct {
		Username      string `json:"username"`
		Alias         string `json:"alias,omitempty"`
		Email         string `json:"email,omitempty"`
		Phone         string `json:"phone,omitempty"`
		Password      string `json:"password"`
		TenantID      *uint  `json:"tenant_id,omitempty"`
		IsTenantAdmin bool   `json:"is_tenant_admin,omitempty"`
		RoleIDs       []uint `json:"role_ids,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	if !isSuperuser {
		// Tenant admins can only act within their own tenant
		tenantID, ok := c.Get("tenant_id").(uint)
		if !ok {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
		}
		req.TenantID = &tenantID
	}

	if req.TenantID != nil {
		var t model.Tenant
		if result := database.GetDB().Where("id = ? AND is_deleted = ?", *req.TenantID, false).First(&t); result.Error != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}

		var count int64
		if err := database.GetDB().Model(&model.User{}).Where("tenant_id = ?", *req.TenantID).Count(&count).Error; err != nil {
			log.Error("Failed to count tenant users", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check user quota"})
		}
		if count >= int64(t.MaxUsers) {
			log.Warn("Tenant user quota exceeded",
				zap.Uint("tenant_id", *req.TenantID),
				zap.Int64("count", count),
				zap.Int("max_users", t.MaxUsers))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant user quota exceeded"})
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password hashing failed"})
	}

	userType := model.UserTypeNormalUser
	if req.IsTenantAdmin {
		userType = model.UserTypeTenantAdmin
	}

	user := model.User{
		Username:      req.Username,
		Alias:         req.Alias,
		Email:         req.Email,
		Phone:         req.Phone,
		Password:      string(hashed),
		IsActive:      true,
		UserType:      userType,
		IsTenantAdmin: req.IsTenantAdmin,
		TenantID:      req.TenantID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.String("username", req.Username), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	if len(req.RoleIDs) > 0 {
		var roles []model.Role
		if err := database.GetDB().Find(&roles, req.RoleIDs).Error; err == nil && len(roles) > 0 {
			if err := database.GetDB().Model(&user).Association("Roles").Replace(roles); err != nil {
				log.Warn("Failed to assign roles", zap.Uint("user_id", user.ID), zap.Error(err))
			}
		}
	}

	audit.Record(c, actorID, "create", "user", user.ID, fmt.Sprintf("created user %q", user.Username))
	log.Info("User created", zap.String("username", user.Username), zap.Uint("id", user.ID))

	return c.JSON(http.StatusCreated, user)
}

// UpdateUser updates profile fields, activation, and role assignments
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)

	actorID, _ := c.Get("user_id").(uint)
	isSuperuser, _ := c.Get("is_superuser").(bool)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var user model.User
	if result := database.GetDB().First(&user, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if !isSuperuser {
		tenantID, ok := c.Get("tenant_id").(uint)
		if !ok || user.TenantID == nil || *user.TenantID != tenantID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}

	var req struct {
		Alias    *string `json:"alias,omitempty"`
		Email    *string `json:"email,omitempty"`
		Phone    *string `json:"phone,omitempty"`
		IsActive *bool   `json:"is_active,omitempty"`
		Password *string `json:"password,omitempty"`
		RoleIDs  []uint  `json:"role_ids,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Alias != nil {
		updates["alias"] = *req.Alias
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password hashing failed"})
		}
		updates["password"] = string(hashed)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if len(updates) > 0 {
		if err := database.GetDB().Model(&user).Updates(updates).Error; err != nil {
			log.Error("Failed to update user", zap.Uint64("id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
		}
	}

	if req.RoleIDs != nil {
		var roles []model.Role
		if len(req.RoleIDs) > 0 {
			if err := database.GetDB().Find(&roles, req.RoleIDs).Error; err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role_ids"})
			}
		}
		if err := database.GetDB().Model(&user).Association("Roles").Replace(roles); err != nil {
			log.Error("Failed to replace roles", zap.Uint("user_id", user.ID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role assignment failed"})
		}
	}

	audit.Record(c, actorID, "update", "user", user.ID, fmt.Sprintf("updated user %q", user.Username))
	return c.JSON(http.StatusOK, user)
}

// DeleteUser soft-deletes a user
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)

	actorID, _ := c.Get("user_id").(uint)
	isSuperuser, _ := c.Get("is_superuser").(bool)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var user model.User
	if result := database.GetDB().First(&user, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if user.IsSuperuser {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot delete a superuser"})
	}
	if !isSuperuser {
		tenantID, ok := c.Get("tenant_id").(uint)
		if !ok || user.TenantID == nil || *user.TenantID != tenantID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := database.GetDB().Delete(&user).Error; err != nil {
		log.Error("Failed to delete user", zap.Uint64("id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user deletion failed"})
	}

	audit.Record(c, actorID, "delete", "user", user.ID, fmt.Sprintf("deleted user %q", user.Username))
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

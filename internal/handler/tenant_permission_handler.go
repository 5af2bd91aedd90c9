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
)

// GrantTenantPermission creates one grant binding a tenant to a menu or an
// api. Exactly one of menu_id/api_id must be set; this is validated here and
// enforced again by the check constraint.
func GrantTenantPermission(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("grant")

	userID, _ := c.Get("user_id").(uint)

	var req struct {
		TenantID uint  `json:"tenant_id"`
		MenuID   *uint `json:"menu_id,omitempty"`
		ApiID    *uint `json:"api_id,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TenantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	perm := model.TenantPermission{
		TenantID:  req.TenantID,
		MenuID:    req.MenuID,
		ApiID:     req.ApiID,
		IsEnabled: true,
	}
	if !perm.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exactly one of menu_id or api_id must be set"})
	}

	var t model.Tenant
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", req.TenantID, false).First(&t); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	if req.ApiID != nil {
		var api model.Api
		if result := database.GetDB().Where("id = ? AND is_deleted = ?", *req.ApiID, false).First(&api); result.Error != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "api not found"})
		}
	}
	if req.MenuID != nil {
		var menu model.Menu
		if result := database.GetDB().Where("id = ? AND is_deleted = ?", *req.MenuID, false).First(&menu); result.Error != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&perm).Error; err != nil {
		log.Error("Failed to create tenant permission", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant creation failed"})
	}

	audit.Record(c, userID, "grant", "tenant_permission", perm.ID,
		fmt.Sprintf("granted tenant %d permission (menu=%v api=%v)", req.TenantID, req.MenuID, req.ApiID))

	return c.JSON(http.StatusCreated, perm)
}

// ListTenantPermissions lists a tenant's grants
func ListTenantPermissions(c echo.Context) error {
	log := logger.FromContext(c)

	tenantID, err := strconv.ParseUint(c.QueryParam("tenant_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var perms []model.TenantPermission
	if err := database.GetDB().
		Preload("Menu").Preload("Api").
		Where("tenant_id = ? AND is_deleted = ?", tenantID, false).
		Find(&perms).Error; err != nil {
		log.Error("Failed to list tenant permissions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve grants"})
	}

	return c.JSON(http.StatusOK, perms)
}

// UpdateTenantPermission enables or disables a grant. A disabled grant denies
// exactly like a missing one.
func UpdateTenantPermission(c echo.Context) error {
	log := logger.FromContext(c)

	userID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission ID"})
	}

	var req struct {
		IsEnabled *bool `json:"is_enabled"`
	}
	if err := c.Bind(&req); err != nil || req.IsEnabled == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_enabled is required"})
	}

	var perm model.TenantPermission
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&perm); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "permission not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&perm).Update("is_enabled", *req.IsEnabled).Error; err != nil {
		log.Error("Failed to update tenant permission", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant update failed"})
	}

	audit.Record(c, userID, "update", "tenant_permission", perm.ID,
		fmt.Sprintf("set is_enabled=%v", *req.IsEnabled))

	return c.JSON(http.StatusOK, perm)
}

// RevokeTenantPermission soft-deletes a grant
func RevokeTenantPermission(c echo.Context) error {
	log := logger.FromContext(c)

	userID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission ID"})
	}

	var perm model.TenantPermission
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&perm); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "permission not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&perm).Update("is_deleted", true).Error; err != nil {
		log.Error("Failed to revoke tenant permission", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant revocation failed"})
	}

	audit.Record(c, userID, "revoke", "tenant_permission", perm.ID, "revoked grant")

	return c.JSON(http.StatusOK, echo.Map{"message": "Permission revoked successfully"})
}

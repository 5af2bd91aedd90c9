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

// ListRoles returns a paginated role list
func ListRoles(c echo.Context) error {
	log := logger.FromContext(c)

	page, pageSize := pagination(c)

	query := database.GetDB().Model(&model.Role{})
	if name := c.QueryParam("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count roles", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve roles"})
	}

	var roles []model.Role
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&roles).Error; err != nil {
		log.Error("Failed to list roles", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve roles"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":     roles,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// CreateRole creates a role
func CreateRole(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	var req struct {
		Name        string `json:"name"`
		Code        string `json:"code,omitempty"`
		Description string `json:"description,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	role := model.Role{Name: req.Name, Code: req.Code, Description: req.Description}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&role).Error; err != nil {
		log.Error("Failed to create role", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role creation failed"})
	}

	audit.Record(c, actorID, "create", "role", role.ID, fmt.Sprintf("created role %q", role.Name))
	return c.JSON(http.StatusCreated, role)
}

// UpdateRole updates role attributes
func UpdateRole(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	var role model.Role
	if result := database.GetDB().First(&role, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if len(updates) > 0 {
		if err := database.GetDB().Model(&role).Updates(updates).Error; err != nil {
			log.Error("Failed to update role", zap.Uint64("id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role update failed"})
		}
	}

	audit.Record(c, actorID, "update", "role", role.ID, fmt.Sprintf("updated role %q", role.Name))
	return c.JSON(http.StatusOK, role)
}

// DeleteRole soft-deletes a role
func DeleteRole(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	var role model.Role
	if result := database.GetDB().First(&role, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := database.GetDB().Delete(&role).Error; err != nil {
		log.Error("Failed to delete role", zap.Uint64("id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role deletion failed"})
	}

	audit.Record(c, actorID, "delete", "role", role.ID, fmt.Sprintf("deleted role %q", role.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "Role deleted successfully"})
}

// SetRoleApis replaces a role's api associations
func SetRoleApis(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	var req struct {
		ApiIDs []uint `json:"api_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var role model.Role
	if result := database.GetDB().First(&role, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
	}

	var apis []model.Api
	if len(req.ApiIDs) > 0 {
		if err := database.GetDB().Find(&apis, req.ApiIDs).Error; err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid api_ids"})
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&role).Association("Apis").Replace(apis); err != nil {
		log.Error("Failed to set role apis", zap.Uint64("role_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role api assignment failed"})
	}

	audit.Record(c, actorID, "update", "role", role.ID, fmt.Sprintf("set %d api associations", len(apis)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Role apis updated successfully"})
}

// SetRoleMenus replaces a role's menu associations
func SetRoleMenus(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	var req struct {
		MenuIDs []uint `json:"menu_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var role model.Role
	if result := database.GetDB().First(&role, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
	}

	var menus []model.Menu
	if len(req.MenuIDs) > 0 {
		if err := database.GetDB().Find(&menus, req.MenuIDs).Error; err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu_ids"})
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&role).Association("Menus").Replace(menus); err != nil {
		log.Error("Failed to set role menus", zap.Uint64("role_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role menu assignment failed"})
	}

	audit.Record(c, actorID, "update", "role", role.ID, fmt.Sprintf("set %d menu associations", len(menus)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Role menus updated successfully"})
}

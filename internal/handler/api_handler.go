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

// ListApis returns the api catalog. Non-superusers only see apis their
// tenant holds an enabled grant for.
func ListApis(c echo.Context) error {
	log := logger.FromContext(c)

	page, pageSize := pagination(c)
	isSuperuser, _ := c.Get("is_superuser").(bool)

	query := database.GetDB().Model(&model.Api{}).Where("apis.is_deleted = ?", false)
	if path := c.QueryParam("path"); path != "" {
		query = query.Where("apis.path ILIKE ?", "%"+path+"%")
	}
	if tags := c.QueryParam("tags"); tags != "" {
		query = query.Where("apis.tags ILIKE ?", "%"+tags+"%")
	}

	if !isSuperuser {
		tenantID, ok := c.Get("tenant_id").(uint)
		if !ok {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
		}
		query = query.Joins(
			"JOIN tenant_permissions ON tenant_permissions.api_id = apis.id AND tenant_permissions.tenant_id = ? AND tenant_permissions.is_enabled = ? AND tenant_permissions.is_deleted = ?",
			tenantID, true, false)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count apis", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve apis"})
	}

	var apis []model.Api
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&apis).Error; err != nil {
		log.Error("Failed to list apis", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve apis"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":     apis,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// CreateApi registers an endpoint in the shared catalog
func CreateApi(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	var req struct {
		Path        string `json:"path"`
		Method      string `json:"method"`
		Summary     string `json:"summary,omitempty"`
		Tags        string `json:"tags,omitempty"`
		Description string `json:"description,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Path == "" || req.Method == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "path and method are required"})
	}
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid method"})
	}

	api := model.Api{
		Path:        req.Path,
		Method:      req.Method,
		Summary:     req.Summary,
		Tags:        req.Tags,
		Description: req.Description,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&api).Error; err != nil {
		log.Error("Failed to create api", zap.String("path", req.Path), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "api creation failed"})
	}

	audit.Record(c, actorID, "create", "api", api.ID, fmt.Sprintf("registered %s %s", api.Method, api.Path))
	return c.JSON(http.StatusCreated, api)
}

// UpdateApi updates catalog metadata for an endpoint
func UpdateApi(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid api ID"})
	}

	var api model.Api
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&api); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "api not found"})
	}

	var req struct {
		Summary     *string `json:"summary,omitempty"`
		Tags        *string `json:"tags,omitempty"`
		Description *string `json:"description,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Summary != nil {
		updates["summary"] = *req.Summary
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if len(updates) > 0 {
		if err := database.GetDB().Model(&api).Updates(updates).Error; err != nil {
			log.Error("Failed to update api", zap.Uint64("id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "api update failed"})
		}
	}

	audit.Record(c, actorID, "update", "api", api.ID, fmt.Sprintf("updated %s %s", api.Method, api.Path))
	return c.JSON(http.StatusOK, api)
}

// DeleteApi soft-deletes a catalog entry. Existing grants pointing at it stop
// mattering because the resolver never resolves a deleted api.
func DeleteApi(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid api ID"})
	}

	var api model.Api
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&api); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "api not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&api).Update("is_deleted", true).Error; err != nil {
		log.Error("Failed to delete api", zap.Uint64("id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "api deletion failed"})
	}

	audit.Record(c, actorID, "delete", "api", api.ID, fmt.Sprintf("deleted %s %s", api.Method, api.Path))
	return c.JSON(http.StatusOK, echo.Map{"message": "Api deleted successfully"})
}

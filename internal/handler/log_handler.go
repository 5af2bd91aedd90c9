package handler

import (
	"net/http"
	"time"

	"registration-service/internal/model"
	"registration-service/pkg/database"
	"registration-service/pkg/logger"
	"registration-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListAuditLogs lists audit log entries, newest first
func ListAuditLogs(c echo.Context) error {
	log := logger.FromContext(c)
	page, pageSize := pagination(c)

	query := database.GetDB().Model(&model.AuditLog{})
	if userID := c.QueryParam("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action := c.QueryParam("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resourceType := c.QueryParam("resource_type"); resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count audit logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve audit logs"})
	}

	var logs []model.AuditLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&logs).Error; err != nil {
		log.Error("Failed to list audit logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve audit logs"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":     logs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListAccessLogs lists request access log entries, newest first
func ListAccessLogs(c echo.Context) error {
	log := logger.FromContext(c)
	page, pageSize := pagination(c)

	query := database.GetDB().Model(&model.AccessLog{})
	if userID := c.QueryParam("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if path := c.QueryParam("path"); path != "" {
		query = query.Where("path LIKE ?", "%"+path+"%")
	}
	if status := c.QueryParam("status_code"); status != "" {
		query = query.Where("status_code = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count access logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve access logs"})
	}

	var logs []model.AccessLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&logs).Error; err != nil {
		log.Error("Failed to list access logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve access logs"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":     logs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

package audit

import (
	"time"

	"registration-service/internal/model"
	"registration-service/pkg/database"
	"registration-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Record writes one audit row for a user action. Audit failures are logged
// and swallowed: an unrecordable action must not fail the request itself.
func Record(c echo.Context, userID uint, action, resourceType string, resourceID uint, details string) {
	log := logger.FromContext(c)

	entry := model.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	}

	if err := database.GetDB().Create(&entry).Error; err != nil {
		log.Warn("Failed to write audit log",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.Error(err))
	}
}

// AccessLogMiddleware writes one access_logs row per handled request
func AccessLogMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			var userID *uint
			if id, ok := c.Get("user_id").(uint); ok {
				userID = &id
			}

			entry := model.AccessLog{
				UserID:       userID,
				Path:         c.Request().URL.Path,
				Method:       c.Request().Method,
				StatusCode:   c.Response().Status,
				ResponseTime: time.Since(start).Milliseconds(),
				IPAddress:    c.RealIP(),
				UserAgent:    c.Request().UserAgent(),
			}

			if dbErr := database.GetDB().Create(&entry).Error; dbErr != nil {
				logger.FromContext(c).Warn("Failed to write access log", zap.Error(dbErr))
			}

			return err
		}
	}
}

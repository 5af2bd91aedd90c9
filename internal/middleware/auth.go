package middleware

import (
	"net/http"
	"strings"

	"registration-service/pkg/jwtutil"
	"registration-service/pkg/logger"
	"registration-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token from the Authorization header
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store principal info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("is_superuser", claims.IsSuperuser)
		c.Set("is_tenant_admin", claims.IsTenantAdmin)

		if claims.TenantID != nil {
			c.Set("tenant_id", *claims.TenantID)

			log.Debug("Request authenticated with tenant context",
				zap.Uint("user_id", claims.UserID),
				zap.Uint("tenant_id", *claims.TenantID))
		}

		return next(c)
	}
}

// RequireSuperuser rejects principals without the superuser flag
func RequireSuperuser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isSuperuser, ok := c.Get("is_superuser").(bool)
		if !ok || !isSuperuser {
			logger.FromContext(c).Warn("Superuser-only endpoint denied",
				zap.String("path", c.Request().URL.Path))
			prometheus.RecordAuthError("superuser_required")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "superuser privileges required"})
		}
		return next(c)
	}
}

// RequireTenantContext rejects principals whose token carries no tenant
func RequireTenantContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get("tenant_id").(uint); !ok {
			logger.FromContext(c).Warn("Tenant context required but missing")
			prometheus.RecordAuthError("tenant_context_required")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
		}
		return next(c)
	}
}

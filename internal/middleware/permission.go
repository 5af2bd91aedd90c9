package middleware

import (
	"net/http"

	"registration-service/internal/permission"
	"registration-service/pkg/logger"
	"registration-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PermissionGate authorizes each request against the api catalog. It runs
// after AuthMiddleware and combines three independent checks: superuser
// override, tenant-level grant, role-level grant. Denials never propagate as
// errors; they become structured 403 responses.
func PermissionGate(resolver *permission.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			userID, ok := c.Get("user_id").(uint)
			if !ok {
				prometheus.RecordAuthError("unauthenticated_permission_check")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			principal := permission.Principal{UserID: userID}
			if isSuperuser, ok := c.Get("is_superuser").(bool); ok {
				principal.IsSuperuser = isSuperuser
			}
			if tenantID, ok := c.Get("tenant_id").(uint); ok {
				principal.TenantID = &tenantID
			}

			// The route pattern, not the raw URL, is what the api catalog stores
			decision, err := resolver.Check(principal, c.Path(), c.Request().Method)
			if err != nil {
				log.Error("Permission check failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "permission check failed"})
			}

			if !decision.Allowed {
				log.Warn("Permission denied",
					zap.Uint("user_id", userID),
					zap.String("path", c.Path()),
					zap.String("method", c.Request().Method),
					zap.String("reason", decision.Reason))
				prometheus.RecordPermissionDecision("deny_" + decision.Reason)
				return c.JSON(http.StatusForbidden, echo.Map{"error": decision.Message})
			}

			prometheus.RecordPermissionDecision("allow")
			return next(c)
		}
	}
}

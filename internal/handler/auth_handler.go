package handler

import (
	"net/http"
	"time"

	"registration-service/internal/model"
	"registration-service/pkg/database"
	"registration-service/pkg/jwtutil"
	"registration-service/pkg/logger"
	"registration-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates a user by username and password and issues a JWT whose
// claims carry the user's tenant binding and privilege flags
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.IsActive {
		log.Warn("Inactive user attempted login", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_inactive")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is disabled"})
	}

	// A non-superuser bound to an unusable tenant cannot log in
	if !user.IsSuperuser && user.TenantID != nil {
		var t model.Tenant
		if err := database.GetDB().Where("id = ? AND is_deleted = ?", *user.TenantID, false).First(&t).Error; err != nil || !t.Usable() {
			log.Warn("Login rejected, tenant not usable",
				zap.String("username", req.Username),
				zap.Uint("tenant_id", *user.TenantID))
			prometheus.RecordAuthError("tenant_not_usable")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant is not available"})
		}
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Username, user.TenantID, user.IsSuperuser, user.IsTenantAdmin)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	now := time.Now()
	if err := database.GetDB().Model(&user).Update("last_login", now).Error; err != nil {
		log.Warn("Failed to update last login", zap.Error(err))
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.Bool("is_superuser", user.IsSuperuser))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":              user.ID,
			"username":        user.Username,
			"alias":           user.Alias,
			"tenant_id":       user.TenantID,
			"is_superuser":    user.IsSuperuser,
			"is_tenant_admin": user.IsTenantAdmin,
		},
	})
}

// GetUserInfo returns the authenticated user's profile with roles
func GetUserInfo(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		prometheus.RecordAuthError("unauthorized_profile_access")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().Preload("Roles").First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}

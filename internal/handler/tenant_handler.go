package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"registration-service/internal/audit"
	"registration-service/internal/model"
	"registration-service/internal/tenant"
	"registration-service/pkg/database"
	"registration-service/pkg/logger"
	"registration-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateTenant handles tenant creation: registry row first, then synchronous
// schema provisioning. The tenant only becomes active once its schema holds
// the full table set; a provisioning failure leaves the row inactive for a
// later re-provision.
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		prometheus.RecordAuthError("unauthorized_tenant_creation")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		MaxUsers    int    `json:"max_users,omitempty"`
		ExpireDate  string `json:"expire_date,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var expireDate *time.Time
	if req.ExpireDate != "" {
		d, err := time.Parse("2006-01-02", req.ExpireDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "expire_date must be YYYY-MM-DD"})
		}
		expireDate = &d
	}
	if req.MaxUsers <= 0 {
		req.MaxUsers = 100
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	// The schema name depends on the assigned id, so the row is created and
	// named inside one transaction. The schema_name field is never taken from
	// the client.
	t := model.Tenant{
		Name:        req.Name,
		Status:      model.TenantStatusInactive,
		Description: req.Description,
		MaxUsers:    req.MaxUsers,
		ExpireDate:  expireDate,
	}

	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if result := tx.Create(&t); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create tenant", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	t.SchemaName = tenant.SchemaName(t.ID)
	if result := tx.Model(&t).Update("schema_name", t.SchemaName); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to set tenant schema name", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit tenant creation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	// Provision synchronously: the create call succeeds only with a fully
	// query-able schema behind it.
	if err := provisioner.Provision(c.Request().Context(), t.ID); err != nil {
		log.Error("Tenant schema provisioning failed",
			zap.Uint("tenant_id", t.ID),
			zap.String("schema", t.SchemaName),
			zap.Error(err))
		prometheus.RecordTenantError(t.ID, "provision_failed")
		// Row stays inactive; the provision endpoint retries the
		// idempotent provisioner.
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":     "tenant schema provisioning failed, tenant left inactive",
			"tenant_id": t.ID,
		})
	}

	if err := database.GetDB().Model(&t).Update("status", model.TenantStatusActive).Error; err != nil {
		log.Error("Failed to activate tenant", zap.Uint("tenant_id", t.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant activation failed"})
	}
	t.Status = model.TenantStatusActive
	prometheus.ActiveTenantsGauge.Inc()

	audit.Record(c, userID, "create", "tenant", t.ID, fmt.Sprintf("created tenant %q with schema %s", t.Name, t.SchemaName))
	log.Info("Tenant created and provisioned",
		zap.String("name", t.Name),
		zap.Uint("id", t.ID),
		zap.String("schema", t.SchemaName))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Tenant created successfully",
		"tenant":  t,
	})
}

// ProvisionTenant re-runs the idempotent provisioner for a tenant whose
// earlier provisioning failed part-way
func ProvisionTenant(c echo.Context) error {
	log := logger.FromContext(c)

	userID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.QueryParam("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var t model.Tenant
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&t); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	if err := provisioner.Provision(c.Request().Context(), t.ID); err != nil {
		log.Error("Tenant re-provisioning failed", zap.Uint("tenant_id", t.ID), zap.Error(err))
		prometheus.RecordTenantError(t.ID, "provision_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant schema provisioning failed"})
	}

	if t.Status == model.TenantStatusInactive {
		if err := database.GetDB().Model(&t).Update("status", model.TenantStatusActive).Error; err != nil {
			log.Error("Failed to activate tenant", zap.Uint("tenant_id", t.ID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant activation failed"})
		}
		prometheus.ActiveTenantsGauge.Inc()
	}

	audit.Record(c, userID, "provision", "tenant", t.ID, "re-provisioned tenant schema")
	log.Info("Tenant re-provisioned", zap.Uint("tenant_id", t.ID))

	return c.JSON(http.StatusOK, echo.Map{"message": "Tenant provisioned successfully"})
}

// ListTenants returns a paginated list of live tenants
func ListTenants(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("list")

	page, pageSize := pagination(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().Model(&model.Tenant{}).Where("is_deleted = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenants"})
	}

	var tenants []model.Tenant
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&tenants).Error; err != nil {
		log.Error("Failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenants"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":     tenants,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetTenant retrieves one tenant
func GetTenant(c echo.Context) error {
	prometheus.RecordTenantOperation("access")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var t model.Tenant
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&t); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	return c.JSON(http.StatusOK, t)
}

// UpdateTenant updates tenant attributes. The schema name is immutable and
// silently ignored if supplied.
func UpdateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("update")

	userID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
		Status      *string `json:"status,omitempty"`
		MaxUsers    *int    `json:"max_users,omitempty"`
		ExpireDate  *string `json:"expire_date,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var t model.Tenant
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&t); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case model.TenantStatusActive, model.TenantStatusInactive, model.TenantStatusSuspended:
			updates["status"] = *req.Status
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
	}
	if req.MaxUsers != nil {
		if *req.MaxUsers <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_users must be positive"})
		}
		updates["max_users"] = *req.MaxUsers
	}
	if req.ExpireDate != nil {
		d, err := time.Parse("2006-01-02", *req.ExpireDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "expire_date must be YYYY-MM-DD"})
		}
		updates["expire_date"] = d
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if len(updates) > 0 {
		if err := database.GetDB().Model(&t).Updates(updates).Error; err != nil {
			log.Error("Failed to update tenant", zap.Uint64("id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant update failed"})
		}
	}

	audit.Record(c, userID, "update", "tenant", t.ID, fmt.Sprintf("updated %d fields", len(updates)))
	return c.JSON(http.StatusOK, t)
}

// DeleteTenant soft-deletes a tenant. The schema itself is never dropped;
// only explicit operator action outside this service would do that.
func DeleteTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("delete")

	userID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var t model.Tenant
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&t); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&t).Update("is_deleted", true).Error; err != nil {
		log.Error("Failed to delete tenant", zap.Uint64("id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant deletion failed"})
	}
	if t.Status == model.TenantStatusActive {
		prometheus.ActiveTenantsGauge.Dec()
	}

	audit.Record(c, userID, "delete", "tenant", t.ID, fmt.Sprintf("soft-deleted tenant %q", t.Name))
	log.Info("Tenant soft-deleted", zap.Uint("tenant_id", t.ID))

	return c.JSON(http.StatusOK, echo.Map{"message": "Tenant deleted successfully"})
}

// pagination reads page/page_size query parameters with sane bounds
func pagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

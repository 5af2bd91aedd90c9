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

// ListMenus returns the menu catalog as a flat list ordered for display.
// Non-superusers only see menus their tenant holds an enabled grant for.
func ListMenus(c echo.Context) error {
	log := logger.FromContext(c)

	isSuperuser, _ := c.Get("is_superuser").(bool)

	query := database.GetDB().Model(&model.Menu{}).Where("menus.is_deleted = ?", false)
	if !isSuperuser {
		tenantID, ok := c.Get("tenant_id").(uint)
		if !ok {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
		}
		query = query.Joins(
			"JOIN tenant_permissions ON tenant_permissions.menu_id = menus.id AND tenant_permissions.tenant_id = ? AND tenant_permissions.is_enabled = ? AND tenant_permissions.is_deleted = ?",
			tenantID, true, false)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var menus []model.Menu
	if err := query.Order("menu_order").Find(&menus).Error; err != nil {
		log.Error("Failed to list menus", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve menus"})
	}

	return c.JSON(http.StatusOK, menus)
}

// CreateMenu creates a menu catalog entry
func CreateMenu(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	var req struct {
		Name      string `json:"name"`
		MenuType  string `json:"menu_type"`
		Path      string `json:"path"`
		Component string `json:"component"`
		Icon      string `json:"icon,omitempty"`
		Order     int    `json:"order,omitempty"`
		ParentID  *uint  `json:"parent_id,omitempty"`
		IsHidden  bool   `json:"is_hidden,omitempty"`
		KeepAlive bool   `json:"keepalive,omitempty"`
		Redirect  string `json:"redirect,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Path == "" || req.Component == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, path and component are required"})
	}
	switch req.MenuType {
	case model.MenuTypeCatalog, model.MenuTypeMenu, model.MenuTypeButton:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu_type"})
	}

	menu := model.Menu{
		Name:      req.Name,
		MenuType:  req.MenuType,
		Path:      req.Path,
		Component: req.Component,
		Icon:      req.Icon,
		Order:     req.Order,
		ParentID:  req.ParentID,
		IsHidden:  req.IsHidden,
		KeepAlive: req.KeepAlive,
		Redirect:  req.Redirect,
		IsEnabled: true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&menu).Error; err != nil {
		log.Error("Failed to create menu", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "menu creation failed"})
	}

	audit.Record(c, actorID, "create", "menu", menu.ID, fmt.Sprintf("created menu %q", menu.Name))
	return c.JSON(http.StatusCreated, menu)
}

// UpdateMenu updates a menu catalog entry
func UpdateMenu(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu ID"})
	}

	var menu model.Menu
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&menu); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
	}

	var req struct {
		Name      *string `json:"name,omitempty"`
		Icon      *string `json:"icon,omitempty"`
		Order     *int    `json:"order,omitempty"`
		IsHidden  *bool   `json:"is_hidden,omitempty"`
		IsEnabled *bool   `json:"is_enabled,omitempty"`
		Redirect  *string `json:"redirect,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.Order != nil {
		updates["menu_order"] = *req.Order
	}
	if req.IsHidden != nil {
		updates["is_hidden"] = *req.IsHidden
	}
	if req.IsEnabled != nil {
		updates["is_enabled"] = *req.IsEnabled
	}
	if req.Redirect != nil {
		updates["redirect"] = *req.Redirect
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if len(updates) > 0 {
		if err := database.GetDB().Model(&menu).Updates(updates).Error; err != nil {
			log.Error("Failed to update menu", zap.Uint64("id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "menu update failed"})
		}
	}

	audit.Record(c, actorID, "update", "menu", menu.ID, fmt.Sprintf("updated menu %q", menu.Name))
	return c.JSON(http.StatusOK, menu)
}

// DeleteMenu soft-deletes a menu catalog entry
func DeleteMenu(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu ID"})
	}

	var menu model.Menu
	if result := database.GetDB().Where("id = ? AND is_deleted = ?", id, false).First(&menu); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
	}

	// Deleting a parent with live children would orphan them in the tree
	var children int64
	if err := database.GetDB().Model(&model.Menu{}).
		Where("parent_id = ? AND is_deleted = ?", id, false).Count(&children).Error; err == nil && children > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "menu has child entries"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&menu).Update("is_deleted", true).Error; err != nil {
		log.Error("Failed to delete menu", zap.Uint64("id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "menu deletion failed"})
	}

	audit.Record(c, actorID, "delete", "menu", menu.ID, fmt.Sprintf("deleted menu %q", menu.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "Menu deleted successfully"})
}

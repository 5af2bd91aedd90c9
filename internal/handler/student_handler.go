package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"registration-service/internal/audit"
	"registration-service/internal/model"
	"registration-service/internal/tenant"
	"registration-service/pkg/logger"
	"registration-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// acquireScope resolves the caller's tenant scope. Every scoped handler goes
// through here so a missing or unusable tenant is always a hard failure,
// never a silent fall-through to the shared schema.
func acquireScope(c echo.Context) (*tenant.Scope, error) {
	tenantID, ok := c.Get("tenant_id").(uint)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "tenant context required")
	}

	scope, err := scopeRouter.Acquire(c.Request().Context(), tenantID)
	if err != nil {
		logger.FromContext(c).Error("Failed to acquire tenant scope",
			zap.Uint("tenant_id", tenantID), zap.Error(err))
		if errors.Is(err, tenant.ErrTenantNotFound) || errors.Is(err, tenant.ErrTenantNotUsable) {
			return nil, echo.NewHTTPError(http.StatusForbidden, "tenant is not available")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "tenant data access failed")
	}
	return scope, nil
}

// ListStudents lists students in the caller's tenant schema
func ListStudents(c echo.Context) error {
	log := logger.FromContext(c)

	scope, err := acquireScope(c)
	if err != nil {
		return err
	}
	defer scope.Close()

	page, pageSize := pagination(c)

	query := scope.DB.Model(&model.Student{})
	if name := c.QueryParam("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if batch := c.QueryParam("admission_batch_id"); batch != "" {
		query = query.Where("admission_batch_id = ?", batch)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count students", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve students"})
	}

	var students []model.Student
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&students).Error; err != nil {
		log.Error("Failed to list students", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve students"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":     students,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// CreateStudent creates a student record in the caller's tenant schema
func CreateStudent(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	scope, err := acquireScope(c)
	if err != nil {
		return err
	}
	defer scope.Close()

	var student model.Student
	if err := c.Bind(&student); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if student.IDCard == "" || student.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_card and name are required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := scope.DB.Create(&student).Error; err != nil {
		log.Error("Failed to create student",
			zap.String("schema", scope.Schema), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "student creation failed"})
	}

	audit.Record(c, actorID, "create", "student", 0, fmt.Sprintf("created student %q in %s", student.Name, scope.Schema))
	return c.JSON(http.StatusCreated, student)
}

// UpdateStudent updates a student record by id card
func UpdateStudent(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	scope, err := acquireScope(c)
	if err != nil {
		return err
	}
	defer scope.Close()

	idCard := c.Param("id_card")

	var student model.Student
	if err := scope.DB.First(&student, "id_card = ?", idCard).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		log.Error("Failed to fetch student", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve student"})
	}

	var updates model.Student
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	// The primary key is immutable
	updates.IDCard = ""

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := scope.DB.Model(&student).Updates(updates).Error; err != nil {
		log.Error("Failed to update student", zap.String("id_card", idCard), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "student update failed"})
	}

	audit.Record(c, actorID, "update", "student", 0, fmt.Sprintf("updated student %s in %s", idCard, scope.Schema))
	return c.JSON(http.StatusOK, student)
}

// DeleteStudent removes a student record by id card
func DeleteStudent(c echo.Context) error {
	log := logger.FromContext(c)
	actorID, _ := c.Get("user_id").(uint)

	scope, err := acquireScope(c)
	if err != nil {
		return err
	}
	defer scope.Close()

	idCard := c.Param("id_card")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := scope.DB.Delete(&model.Student{}, "id_card = ?", idCard)
	if result.Error != nil {
		log.Error("Failed to delete student", zap.String("id_card", idCard), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "student deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
	}

	audit.Record(c, actorID, "delete", "student", 0, fmt.Sprintf("deleted student %s in %s", idCard, scope.Schema))
	return c.JSON(http.StatusOK, echo.Map{"message": "Student deleted successfully"})
}

// ExportStudents streams the tenant's student roster as an xlsx workbook
func ExportStudents(c echo.Context) error {
	log := logger.FromContext(c)

	scope, err := acquireScope(c)
	if err != nil {
		return err
	}
	defer scope.Close()

	defer prometheus.TrackDBOperation("query")(time.Now())
	var students []model.Student
	if err := scope.DB.Order("student_id").Find(&students).Error; err != nil {
		log.Error("Failed to fetch students for export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve students"})
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Students"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID Card", "Student ID", "Name", "Gender", "Phone", "Email", "Address"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, s := range students {
		values := []interface{}{s.IDCard, s.StudentID, s.Name, s.Gender, s.Phone, s.Email, s.Address}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=students_%s.xlsx", scope.Schema))
	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	if err := f.Write(c.Response()); err != nil {
		log.Error("Failed to write xlsx export", zap.Error(err))
		return err
	}

	log.Info("Exported student roster",
		zap.String("schema", scope.Schema),
		zap.Int("count", len(students)))
	return nil
}

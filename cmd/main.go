package main

import (
	"registration-service/internal/audit"
	"registration-service/internal/handler"
	"registration-service/internal/middleware"
	"registration-service/internal/permission"
	"registration-service/internal/tenant"
	"registration-service/pkg/config"
	"registration-service/pkg/database"
	"registration-service/pkg/jwtutil"
	"registration-service/pkg/logger"
	"registration-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting registration service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Wire the tenant plumbing: the provisioner builds tenant schemas, the
	// router hands out schema-pinned database scopes, and the resolver
	// answers permission checks against the shared schema.
	provisioner := tenant.NewProvisioner(database.GetDB(), log)
	scopeRouter := tenant.NewRouter(database.GetDB(), cfg, log)
	resolver := permission.NewResolver(permission.NewGormStore(database.GetDB()))
	handler.Initialize(provisioner, scopeRouter)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover()) // Add recovery middleware
	e.Use(echomiddleware.CORS())    // Add CORS middleware
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	e.Use(audit.AccessLogMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	api.GET("/auth/userinfo", handler.GetUserInfo)

	// Platform administration - superuser only, not subject to tenant grants
	admin := api.Group("/admin")
	admin.Use(middleware.RequireSuperuser)

	admin.POST("/tenants", handler.CreateTenant)
	admin.POST("/tenants/provision", handler.ProvisionTenant)
	admin.GET("/tenants", handler.ListTenants)
	admin.GET("/tenants/:id", handler.GetTenant)
	admin.PATCH("/tenants/:id", handler.UpdateTenant)
	admin.DELETE("/tenants/:id", handler.DeleteTenant)

	admin.POST("/tenant-permissions", handler.GrantTenantPermission)
	admin.GET("/tenant-permissions", handler.ListTenantPermissions)
	admin.PATCH("/tenant-permissions/:id", handler.UpdateTenantPermission)
	admin.DELETE("/tenant-permissions/:id", handler.RevokeTenantPermission)

	admin.POST("/apis", handler.CreateApi)
	admin.PATCH("/apis/:id", handler.UpdateApi)
	admin.DELETE("/apis/:id", handler.DeleteApi)

	admin.POST("/menus", handler.CreateMenu)
	admin.PATCH("/menus/:id", handler.UpdateMenu)
	admin.DELETE("/menus/:id", handler.DeleteMenu)

	admin.GET("/audit-logs", handler.ListAuditLogs)
	admin.GET("/access-logs", handler.ListAccessLogs)

	// Business routes - gated by the tenant and role permission resolver
	gated := api.Group("")
	gated.Use(middleware.PermissionGate(resolver))

	gated.GET("/apis", handler.ListApis)
	gated.GET("/menus", handler.ListMenus)

	gated.GET("/users", handler.ListUsers)
	gated.POST("/users", handler.CreateUser)
	gated.PATCH("/users/:id", handler.UpdateUser)
	gated.DELETE("/users/:id", handler.DeleteUser)

	gated.GET("/roles", handler.ListRoles)
	gated.POST("/roles", handler.CreateRole)
	gated.PATCH("/roles/:id", handler.UpdateRole)
	gated.DELETE("/roles/:id", handler.DeleteRole)
	gated.PUT("/roles/:id/apis", handler.SetRoleApis)
	gated.PUT("/roles/:id/menus", handler.SetRoleMenus)

	// Student records live in the caller's tenant schema
	students := gated.Group("/students")
	students.Use(middleware.RequireTenantContext)
	students.GET("", handler.ListStudents)
	students.POST("", handler.CreateStudent)
	students.PATCH("/:id_card", handler.UpdateStudent)
	students.DELETE("/:id_card", handler.DeleteStudent)
	students.GET("/export", handler.ExportStudents)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

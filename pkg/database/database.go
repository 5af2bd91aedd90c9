package database

import (
	"fmt"

	"registration-service/internal/model"
	"registration-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB initializes the shared (public schema) database connection
func InitDB(cfg *config.Config) error {
	var err error

	// Set default log level if not specified
	logLevel := cfg.DB.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	// Connect with DisableAutoPrepare option to prevent "prepared statement
	// already exists" errors
	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	DB, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}

	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}

	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	// AutoMigrate covers the control tables in the public schema only.
	// Tenant-schema tables are created by the provisioner, never here.
	err = DB.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Role{},
		&model.Api{},
		&model.Menu{},
		&model.TenantPermission{},
		&model.AuditLog{},
		&model.AccessLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// The menu-or-api exclusivity rule on tenant permissions is enforced in
	// the database as well as in the model.
	DB.Exec(`ALTER TABLE tenant_permissions DROP CONSTRAINT IF EXISTS check_menu_or_api`)
	if err := DB.Exec(`ALTER TABLE tenant_permissions ADD CONSTRAINT check_menu_or_api
		CHECK ((menu_id IS NOT NULL AND api_id IS NULL) OR (menu_id IS NULL AND api_id IS NOT NULL))`).Error; err != nil {
		return fmt.Errorf("failed to add tenant permission constraint: %w", err)
	}

	return nil
}

// GetDB returns the shared database instance
func GetDB() *gorm.DB {
	return DB
}

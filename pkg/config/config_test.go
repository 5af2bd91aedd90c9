package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "registration", cfg.DB.DBName)
	assert.Equal(t, "Asia/Shanghai", cfg.DB.TimeZone)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 2, cfg.JWT.ExpirationHours)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{
		Host: "localhost", Port: "5432",
		User: "postgres", Password: "password",
		DBName: "registration", SSLMode: "disable",
		TimeZone: "Asia/Shanghai",
	}

	dsn := db.GetDSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=registration")
	assert.Contains(t, dsn, "TimeZone=Asia/Shanghai")
	assert.NotContains(t, dsn, "search_path")
}

func TestGetTenantDSNPinsSearchPath(t *testing.T) {
	db := DBConfig{
		Host: "localhost", Port: "5432",
		User: "postgres", Password: "password",
		DBName: "registration", SSLMode: "disable",
		TimeZone: "Asia/Shanghai",
	}

	dsn := db.GetTenantDSN("tenant_12")
	assert.Contains(t, dsn, "search_path=tenant_12")
	assert.Contains(t, dsn, "TimeZone=Asia/Shanghai",
		"tenant handles must carry the same canonical timezone as the shared handle")
}

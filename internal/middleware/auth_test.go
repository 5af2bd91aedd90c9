package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"registration-service/pkg/config"
	"registration-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invokeAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := AuthMiddleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	require.NoError(t, handler(c))
	return rec, c
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	rec, _ := invokeAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsNonBearerHeader(t *testing.T) {
	rec, _ := invokeAuth(t, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "middleware-test-key", ExpirationHours: 1})

	rec, _ := invokeAuth(t, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareSetsPrincipalContext(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "middleware-test-key", ExpirationHours: 1})

	tid := uint(3)
	token, err := jwtutil.GenerateToken(9, "tenant-admin", &tid, false, true)
	require.NoError(t, err)

	rec, c := invokeAuth(t, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, uint(9), c.Get("user_id"))
	assert.Equal(t, "tenant-admin", c.Get("username"))
	assert.Equal(t, false, c.Get("is_superuser"))
	assert.Equal(t, true, c.Get("is_tenant_admin"))
	assert.Equal(t, uint(3), c.Get("tenant_id"))
}

func TestAuthMiddlewareLeavesTenantUnsetForSuperuser(t *testing.T) {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "middleware-test-key", ExpirationHours: 1})

	token, err := jwtutil.GenerateToken(1, "root", nil, true, false)
	require.NoError(t, err)

	rec, c := invokeAuth(t, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, true, c.Get("is_superuser"))
	assert.Nil(t, c.Get("tenant_id"))
}

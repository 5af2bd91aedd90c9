package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"registration-service/internal/permission"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStore struct {
	apiID       uint
	apiFound    bool
	tenantGrant bool
	roleGrant   bool
}

func (s *staticStore) FindAPIID(path, method string) (uint, bool, error) {
	return s.apiID, s.apiFound, nil
}

func (s *staticStore) TenantGrantEnabled(tenantID, apiID uint) (bool, error) {
	return s.tenantGrant, nil
}

func (s *staticStore) RoleHasAPI(userID, apiID uint) (bool, error) {
	return s.roleGrant, nil
}

func invokeGate(t *testing.T, store permission.Store, seed func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/students")
	seed(c)

	gate := PermissionGate(permission.NewResolver(store))
	handler := gate(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	require.NoError(t, handler(c))
	return rec
}

func TestPermissionGateAllowsGrantedUser(t *testing.T) {
	store := &staticStore{apiID: 1, apiFound: true, tenantGrant: true, roleGrant: true}

	rec := invokeGate(t, store, func(c echo.Context) {
		c.Set("user_id", uint(5))
		c.Set("tenant_id", uint(2))
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPermissionGateDeniesWithoutTenantGrant(t *testing.T) {
	store := &staticStore{apiID: 1, apiFound: true, tenantGrant: false, roleGrant: true}

	rec := invokeGate(t, store, func(c echo.Context) {
		c.Set("user_id", uint(5))
		c.Set("tenant_id", uint(2))
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "tenant lacks access")
}

func TestPermissionGateDeniesWithoutRoleGrant(t *testing.T) {
	store := &staticStore{apiID: 1, apiFound: true, tenantGrant: true, roleGrant: false}

	rec := invokeGate(t, store, func(c echo.Context) {
		c.Set("user_id", uint(5))
		c.Set("tenant_id", uint(2))
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "role lacks access")
}

func TestPermissionGateSuperuserBypass(t *testing.T) {
	store := &staticStore{} // would deny everyone

	rec := invokeGate(t, store, func(c echo.Context) {
		c.Set("user_id", uint(1))
		c.Set("is_superuser", true)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPermissionGateRequiresAuthentication(t *testing.T) {
	store := &staticStore{apiID: 1, apiFound: true, tenantGrant: true, roleGrant: true}

	rec := invokeGate(t, store, func(c echo.Context) {})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

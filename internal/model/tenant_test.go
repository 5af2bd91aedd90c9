package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTenantUsable(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	cases := []struct {
		name   string
		tenant Tenant
		usable bool
	}{
		{"active", Tenant{Status: TenantStatusActive}, true},
		{"active with future expiry", Tenant{Status: TenantStatusActive, ExpireDate: &future}, true},
		{"inactive", Tenant{Status: TenantStatusInactive}, false},
		{"suspended", Tenant{Status: TenantStatusSuspended}, false},
		{"deleted", Tenant{Status: TenantStatusActive, IsDeleted: true}, false},
		{"expired", Tenant{Status: TenantStatusActive, ExpireDate: &past}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.usable, tc.tenant.Usable())
		})
	}
}

func TestTenantPermissionValid(t *testing.T) {
	menuID := uint(1)
	apiID := uint(2)

	assert.True(t, (&TenantPermission{MenuID: &menuID}).Valid())
	assert.True(t, (&TenantPermission{ApiID: &apiID}).Valid())
	assert.False(t, (&TenantPermission{}).Valid(), "neither reference set")
	assert.False(t, (&TenantPermission{MenuID: &menuID, ApiID: &apiID}).Valid(), "both references set")
}

package permission

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore answers the three lookups from fixed state and records which
// lookups were made, so short-circuiting can be asserted.
type fakeStore struct {
	apiID       uint
	apiFound    bool
	tenantGrant bool
	roleGrant   bool
	err         error
	lookupsMade []string
}

func (s *fakeStore) FindAPIID(path, method string) (uint, bool, error) {
	s.lookupsMade = append(s.lookupsMade, "api")
	return s.apiID, s.apiFound, s.err
}

func (s *fakeStore) TenantGrantEnabled(tenantID, apiID uint) (bool, error) {
	s.lookupsMade = append(s.lookupsMade, "tenant")
	return s.tenantGrant, s.err
}

func (s *fakeStore) RoleHasAPI(userID, apiID uint) (bool, error) {
	s.lookupsMade = append(s.lookupsMade, "role")
	return s.roleGrant, s.err
}

func tenantID(id uint) *uint { return &id }

func TestCheckSuperuserBypassesAllLookups(t *testing.T) {
	store := &fakeStore{}
	r := NewResolver(store)

	d, err := r.Check(Principal{UserID: 1, IsSuperuser: true}, "/api/users", "GET")
	require.NoError(t, err)

	assert.True(t, d.Allowed)
	assert.Equal(t, ReasonSuperuser, d.Reason)
	assert.Empty(t, store.lookupsMade, "superuser must not hit the store")
}

func TestCheckGrantedWhenBothChecksHold(t *testing.T) {
	store := &fakeStore{apiID: 10, apiFound: true, tenantGrant: true, roleGrant: true}
	r := NewResolver(store)

	d, err := r.Check(Principal{UserID: 5, TenantID: tenantID(2)}, "/api/students", "POST")
	require.NoError(t, err)

	assert.True(t, d.Allowed)
	assert.Equal(t, ReasonGranted, d.Reason)
}

func TestCheckUnknownResource(t *testing.T) {
	store := &fakeStore{apiFound: false}
	r := NewResolver(store)

	d, err := r.Check(Principal{UserID: 5, TenantID: tenantID(2)}, "/api/unknown", "GET")
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonUnknownResource, d.Reason)
	assert.Equal(t, []string{"api"}, store.lookupsMade)
}

func TestCheckNoTenant(t *testing.T) {
	store := &fakeStore{apiID: 10, apiFound: true, tenantGrant: true, roleGrant: true}
	r := NewResolver(store)

	d, err := r.Check(Principal{UserID: 5, TenantID: nil}, "/api/students", "GET")
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNoTenant, d.Reason)
	assert.Equal(t, "tenant lacks access", d.Message)
}

func TestCheckTenantAndRoleAreIndependent(t *testing.T) {
	cases := []struct {
		name        string
		tenantGrant bool
		roleGrant   bool
		allowed     bool
		reason      string
		message     string
	}{
		{"both denied", false, false, false, ReasonTenantDenied, "tenant lacks access"},
		{"tenant denied role granted", false, true, false, ReasonTenantDenied, "tenant lacks access"},
		{"tenant granted role denied", true, false, false, ReasonRoleDenied, "role lacks access"},
		{"both granted", true, true, true, ReasonGranted, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{
				apiID: 10, apiFound: true,
				tenantGrant: tc.tenantGrant,
				roleGrant:   tc.roleGrant,
			}
			r := NewResolver(store)

			d, err := r.Check(Principal{UserID: 5, TenantID: tenantID(2)}, "/api/students", "GET")
			require.NoError(t, err)

			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.reason, d.Reason)
			assert.Equal(t, tc.message, d.Message)
		})
	}
}

func TestCheckTenantDenialShortCircuitsRoleLookup(t *testing.T) {
	store := &fakeStore{apiID: 10, apiFound: true, tenantGrant: false, roleGrant: true}
	r := NewResolver(store)

	_, err := r.Check(Principal{UserID: 5, TenantID: tenantID(2)}, "/api/students", "GET")
	require.NoError(t, err)

	assert.NotContains(t, store.lookupsMade, "role",
		"role lookup must not run once the tenant check denies")
}

func TestCheckPropagatesStoreErrors(t *testing.T) {
	store := &fakeStore{err: errors.New("database down")}
	r := NewResolver(store)

	_, err := r.Check(Principal{UserID: 5, TenantID: tenantID(2)}, "/api/students", "GET")
	require.Error(t, err)
}

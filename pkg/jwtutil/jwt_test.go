package jwtutil

import (
	"testing"

	"registration-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	tid := uint(7)
	tokenString, err := GenerateToken(42, "freshman-admin", &tid, false, true)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "freshman-admin", claims.Username)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, uint(7), *claims.TenantID)
	assert.False(t, claims.IsSuperuser)
	assert.True(t, claims.IsTenantAdmin)
}

func TestGenerateTokenSuperuserHasNoTenant(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	tokenString, err := GenerateToken(1, "root", nil, true, false)
	require.NoError(t, err)

	claims, err := ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Nil(t, claims.TenantID)
	assert.True(t, claims.IsSuperuser)
}

func TestValidateTokenRejectsTamperedToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	tokenString, err := GenerateToken(42, "user", nil, false, false)
	require.NoError(t, err)

	_, err = ValidateToken(tokenString + "x")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpiredToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	expirationHours = -1
	defer func() { expirationHours = 1 }()

	tokenString, err := GenerateToken(42, "user", nil, false, false)
	require.NoError(t, err)

	_, err = ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	tokenString, err := GenerateToken(42, "user", nil, false, false)
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})
	_, err = ValidateToken(tokenString)
	assert.Error(t, err)
}

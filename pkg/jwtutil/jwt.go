package jwtutil

import (
	"time"

	"registration-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var (
	secret          = []byte("registration-secret-key")
	expirationHours = 24
)

// Initialize configures the signing key and token lifetime from config
func Initialize(cfg *config.JWTConfig) {
	if cfg.SigningKey != "" {
		secret = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationHours > 0 {
		expirationHours = cfg.ExpirationHours
	}
}

// UserClaims represents the JWT claims for an authenticated principal
type UserClaims struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	TenantID      *uint  `json:"tenant_id,omitempty"` // nil for superusers
	IsSuperuser   bool   `json:"is_superuser,omitempty"`
	IsTenantAdmin bool   `json:"is_tenant_admin,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token carrying the principal's identity and
// tenant binding
func GenerateToken(userID uint, username string, tenantID *uint, isSuperuser, isTenantAdmin bool) (string, error) {
	claims := UserClaims{
		UserID:        userID,
		Username:      username,
		TenantID:      tenantID,
		IsSuperuser:   isSuperuser,
		IsTenantAdmin: isTenantAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

package hrauth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	hrauth "github.com/peoplekit/go-hrauth"
)

func TestJWTClaimsRoleChecks(t *testing.T) {
	claims := &hrauth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "bob@x.com"},
		Roles:            []string{hrauth.RoleEmployee, hrauth.RoleManager},
	}

	assert.Equal(t, "bob@x.com", claims.Subject())
	assert.True(t, claims.HasRole(hrauth.RoleEmployee))
	assert.False(t, claims.HasRole(hrauth.RoleAdmin))

	assert.True(t, claims.HasAnyRole(hrauth.RoleAdmin, hrauth.RoleManager))
	assert.False(t, claims.HasAnyRole(hrauth.RoleAdmin))

	// Empty requirement means "any authenticated caller".
	assert.True(t, claims.HasAnyRole())
}

func TestJWTClaimsTimes(t *testing.T) {
	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	expires := issued.Add(24 * time.Hour)

	claims := &hrauth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	assert.Equal(t, issued, claims.IssuedAt())
	assert.Equal(t, expires, claims.Expires())

	empty := &hrauth.JWTClaims{}
	assert.True(t, empty.Expires().IsZero())
	assert.True(t, empty.IssuedAt().IsZero())
}

package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_GenerateAndParse(t *testing.T) {
	token, err := Generate("secret", "ventas-cfdi", 5, Claims{UserID: "u-1", CompanyID: "c-1", Email: "caja@example.com", Role: "admin"})
	require.NoError(t, err)

	claims, err := Parse("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "c-1", claims.CompanyID)
	assert.Equal(t, "caja@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "ventas-cfdi", claims.Issuer)
}

func TestParse_Rechaza(t *testing.T) {
	token, err := Generate("secret", "ventas-cfdi", 5, Claims{UserID: "u-1", CompanyID: "c-1"})
	require.NoError(t, err)

	_, err = Parse("otro", token)
	assert.Error(t, err)

	expired, err := Generate("secret", "ventas-cfdi", -1, Claims{UserID: "u-1", CompanyID: "c-1"})
	require.NoError(t, err)
	_, err = Parse("secret", expired)
	assert.Error(t, err)

	noTenant, err := Generate("secret", "ventas-cfdi", 5, Claims{UserID: "u-1"})
	require.NoError(t, err)
	_, err = Parse("secret", noTenant)
	assert.Error(t, err)
}

package service

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCarriesClaims(t *testing.T) {
	mgr := NewJWTManager("test-secret")

	signed, err := mgr.Generate(42, "a@example.com", true)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		require.IsType(t, &jwt.SigningMethodHMAC{}, tok.Method)
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "a@example.com", claims["email"])
	assert.Equal(t, true, claims["is_admin"])
	assert.NotNil(t, claims["exp"])
}

func TestGenerateRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager("test-secret")

	signed, err := mgr.Generate(42, "a@example.com", false)
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}

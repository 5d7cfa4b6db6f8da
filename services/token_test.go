package services

import (
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pophero110/trackly-sub002/utils"
)

func init() {
	os.Setenv("GO_ENV", "test")
	utils.InitJWT()
}

func parseClaims(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(utils.JWTSecretKey), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestGenerateTokenClaims(t *testing.T) {
	tokenString, err := GenerateToken("user-1")
	require.NoError(t, err)

	claims := parseClaims(t, tokenString)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, utils.JWTIssuer, claims["iss"])
	assert.NotContains(t, claims, "type")
	assert.NotNil(t, claims["exp"])
	assert.NotNil(t, claims["iat"])
}

func TestGenerateRefreshTokenCarriesType(t *testing.T) {
	tokenString, err := GenerateRefreshToken("user-1")
	require.NoError(t, err)

	claims := parseClaims(t, tokenString)
	assert.Equal(t, "refresh", claims["type"])
	assert.Equal(t, "user-1", claims["user_id"])
}

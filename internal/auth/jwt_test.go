package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateJWT("s3cret", "kiosk-1", time.Hour)
	require.NoError(t, err)

	subject, err := ValidateJWT("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "kiosk-1", subject)
}

func TestValidateRejects(t *testing.T) {
	good, err := GenerateJWT("s3cret", "kiosk-1", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateJWT("s3cret", "kiosk-1", -time.Minute)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = ValidateJWT("other", good)
	assert.Error(t, err, "wrong secret")
	_, err = ValidateJWT("s3cret", expired)
	assert.Error(t, err, "expired")
	_, err = ValidateJWT("s3cret", noExp)
	assert.Error(t, err, "missing exp")
	_, err = ValidateJWT("s3cret", "not-a-token")
	assert.Error(t, err)
}

func TestGenerateRequiresSecret(t *testing.T) {
	_, err := GenerateJWT("", "x", time.Hour)
	assert.Error(t, err)
}

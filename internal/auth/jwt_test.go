package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateJWT("user_2abc", secret, time.Hour)
	require.NoError(t, err)

	sub, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", sub)
}

func TestValidateRejectsWrongSecretAndExpired(t *testing.T) {
	token, err := GenerateJWT("u1", secret, time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(token, []byte("other"))
	assert.Error(t, err)

	expired, err := GenerateJWT("u1", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsMissingSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = ValidateToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRejectsEmptyInput(t *testing.T) {
	_, err := GenerateJWT("", secret, time.Hour)
	assert.Error(t, err)
	_, err = GenerateJWT("u", nil, time.Hour)
	assert.Error(t, err)
}

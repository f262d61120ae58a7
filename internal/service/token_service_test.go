package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret", "remitchat")
	userID := uuid.New()

	token, err := svc.Generate(userID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestJWTTokenService_Validate_WrongSecret(t *testing.T) {
	token, err := NewJWTTokenService("secret-a", "remitchat").Generate(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewJWTTokenService("secret-b", "remitchat").Validate(token)
	assertAppError(t, err, "AUTH_001")
}

func TestJWTTokenService_Validate_WrongIssuer(t *testing.T) {
	token, err := NewJWTTokenService("secret", "someone-else").Generate(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewJWTTokenService("secret", "remitchat").Validate(token)
	assertAppError(t, err, "AUTH_001")
}

func TestJWTTokenService_Validate_Expired(t *testing.T) {
	svc := NewJWTTokenService("secret", "remitchat")
	token, err := svc.Generate(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assertAppError(t, err, "AUTH_001")
}

func TestJWTTokenService_Validate_WrongAlgorithm(t *testing.T) {
	svc := NewJWTTokenService("secret", "remitchat")

	// alg=none tokens must be rejected outright.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uuid.New().String(),
		"iss": "remitchat",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assertAppError(t, err, "AUTH_001")
}

func TestJWTTokenService_Validate_GarbageSubject(t *testing.T) {
	svc := NewJWTTokenService("secret", "remitchat")

	claims := jwt.MapClaims{
		"sub": "not-a-uuid",
		"iss": "remitchat",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assertAppError(t, err, "AUTH_001")
}

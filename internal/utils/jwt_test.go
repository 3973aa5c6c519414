// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	userID := uuid.New()
	token, err := GenerateJWT(userID, "user@example.com", "customer", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Empty(t, claims.ActorID)

	_, err = ValidateJWT(token + "tampered")
	assert.Error(t, err)
}

func TestImpersonationJWTCarriesActor(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	subjectID := uuid.New()
	actorID := uuid.New()
	token, err := GenerateImpersonationJWT(subjectID, "customer@example.com", "customer", actorID, 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, subjectID.String(), claims.UserID)
	assert.Equal(t, actorID.String(), claims.ActorID)
	assert.Equal(t, "customer", claims.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	userID := uuid.New()
	token, err := GenerateRefreshToken(userID, 24)
	require.NoError(t, err)

	subject, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)
}

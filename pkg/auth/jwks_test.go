package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heighterses/cenaris/pkg/testhelpers"
)

func TestParseUnverifiedToken(t *testing.T) {
	client, err := NewJWKSClient(&JWKSConfig{EnableVerification: false})
	require.NoError(t, err)
	defer client.Close()

	orgID := uuid.NewString()
	token := testhelpers.GenerateTestJWT("auth0|user-1", orgID, "user@example.com")

	claims, err := client.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "auth0|user-1", claims.Subject)
	assert.Equal(t, orgID, claims.OrgID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestParseUnverifiedTokenGarbage(t *testing.T) {
	client, err := NewJWKSClient(&JWKSConfig{EnableVerification: false})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

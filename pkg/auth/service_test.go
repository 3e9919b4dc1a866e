package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockJWKSClient returns preset claims without touching the network.
type mockJWKSClient struct {
	claims *Claims
	err    error
}

func (m *mockJWKSClient) ValidateToken(tokenString string) (*Claims, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

func (m *mockJWKSClient) Close() {}

func validClaims() *Claims {
	claims := &Claims{OrgID: uuid.NewString(), Email: "user@example.com"}
	claims.Subject = "auth0|user-1"
	return claims
}

func TestValidateRequestFromCookie(t *testing.T) {
	svc := NewAuthService(&mockJWKSClient{claims: validClaims()}, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "token-value"})

	claims, token, err := svc.ValidateRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "auth0|user-1", claims.Subject)
	assert.Equal(t, "token-value", token)
}

func TestValidateRequestFromBearerHeader(t *testing.T) {
	svc := NewAuthService(&mockJWKSClient{claims: validClaims()}, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer token-value")

	claims, token, err := svc.ValidateRequest(r)
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, "token-value", token)
}

func TestValidateRequestMissingAuth(t *testing.T) {
	svc := NewAuthService(&mockJWKSClient{claims: validClaims()}, zap.NewNop())

	_, _, err := svc.ValidateRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrMissingAuthorization)
}

func TestValidateRequestMalformedHeader(t *testing.T) {
	svc := NewAuthService(&mockJWKSClient{claims: validClaims()}, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	_, _, err := svc.ValidateRequest(r)
	assert.ErrorIs(t, err, ErrInvalidAuthFormat)
}

func TestValidateRequestInvalidToken(t *testing.T) {
	svc := NewAuthService(&mockJWKSClient{err: errors.New("bad signature")}, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})

	_, _, err := svc.ValidateRequest(r)
	assert.Error(t, err)
}

func TestRequireOrgID(t *testing.T) {
	svc := NewAuthService(&mockJWKSClient{}, zap.NewNop())

	assert.NoError(t, svc.RequireOrgID(validClaims()))
	assert.ErrorIs(t, svc.RequireOrgID(&Claims{}), ErrMissingOrgID)
}

func TestValidateOrgIDMatch(t *testing.T) {
	svc := NewAuthService(&mockJWKSClient{}, zap.NewNop())
	claims := validClaims()

	assert.NoError(t, svc.ValidateOrgIDMatch(claims, claims.OrgID))
	assert.NoError(t, svc.ValidateOrgIDMatch(claims, ""), "empty URL org skips the check")
	assert.ErrorIs(t, svc.ValidateOrgIDMatch(claims, uuid.NewString()), ErrOrgIDMismatch)
}

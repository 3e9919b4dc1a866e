package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/auth"
	"github.com/heighterses/cenaris/pkg/config"
)

func newAuthTestHandler(t *testing.T) *AuthHandler {
	t.Helper()
	auth.InitSessionStore("test-session-secret", false)

	cfg := &config.Config{
		Env:     "local",
		BaseURL: "http://localhost:8080",
	}
	cfg.Auth.AuthServerURL = "https://id.example.com"
	cfg.Auth.ClientID = "cenaris"
	return NewAuthHandler(cfg, zap.NewNop())
}

func TestLoginRedirectsToIdentityProvider(t *testing.T) {
	handler := newAuthTestHandler(t)

	w := httptest.NewRecorder()
	handler.Login(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "id.example.com", location.Host)
	assert.Equal(t, "/authorize", location.Path)
	assert.Equal(t, "token", location.Query().Get("response_type"))
	assert.Equal(t, "cenaris", location.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:8080/auth/callback", location.Query().Get("redirect_uri"))
	assert.NotEmpty(t, location.Query().Get("state"))

	assert.NotEmpty(t, w.Result().Cookies(), "login must set the session cookie carrying the state")
}

func TestLoginUnconfigured(t *testing.T) {
	auth.InitSessionStore("test-session-secret", false)
	handler := NewAuthHandler(&config.Config{Env: "local"}, zap.NewNop())

	w := httptest.NewRecorder()
	handler.Login(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCallbackSetsAuthCookie(t *testing.T) {
	handler := newAuthTestHandler(t)

	// Run the login step to obtain a session cookie with a state value.
	loginRec := httptest.NewRecorder()
	handler.Login(loginRec, httptest.NewRequest(http.MethodGet, "/auth/login?next=/dashboard", nil))
	require.Equal(t, http.StatusFound, loginRec.Code)

	location, err := url.Parse(loginRec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state="+url.QueryEscape(state)+"&token=jwt-token-value", nil)
	for _, c := range loginRec.Result().Cookies() {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	handler.Callback(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	var jwtCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			jwtCookie = c
		}
	}
	require.NotNil(t, jwtCookie)
	assert.Equal(t, "jwt-token-value", jwtCookie.Value)
	assert.True(t, jwtCookie.HttpOnly)
}

func TestCallbackRejectsStateMismatch(t *testing.T) {
	handler := newAuthTestHandler(t)

	loginRec := httptest.NewRecorder()
	handler.Login(loginRec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state=forged&token=jwt-token-value", nil)
	for _, c := range loginRec.Result().Cookies() {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	handler.Callback(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallbackRejectsMissingToken(t *testing.T) {
	handler := newAuthTestHandler(t)

	loginRec := httptest.NewRecorder()
	handler.Login(loginRec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	location, err := url.Parse(loginRec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")

	r := httptest.NewRequest(http.MethodGet, "/auth/callback?state="+url.QueryEscape(state), nil)
	for _, c := range loginRec.Result().Cookies() {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	handler.Callback(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutExpiresAuthCookie(t *testing.T) {
	handler := newAuthTestHandler(t)

	w := httptest.NewRecorder()
	handler.Logout(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var jwtCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			jwtCookie = c
		}
	}
	require.NotNil(t, jwtCookie)
	assert.Empty(t, jwtCookie.Value)
	assert.Negative(t, jwtCookie.MaxAge)
}

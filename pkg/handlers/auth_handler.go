package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/heighterses/cenaris/pkg/auth"
	"github.com/heighterses/cenaris/pkg/config"
)

// AuthHandler handles the browser login flow against the external identity
// provider. Token issuance happens there; this service only round-trips
// OAuth state through the session cookie and stores the returned JWT.
type AuthHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, logger: logger}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
}

// Login handles GET /auth/login.
// Stores CSRF state in the session and redirects to the identity provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Auth.AuthServerURL == "" {
		if err := ErrorResponse(w, http.StatusServiceUnavailable, "auth_unavailable", "Login is not configured"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	state, err := randomState()
	if err != nil {
		h.logger.Error("Failed to generate OAuth state", zap.Error(err))
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	session, err := auth.GetSession(r)
	if err != nil {
		h.logger.Warn("Failed to decode existing session; starting fresh", zap.Error(err))
	}
	session.Values[auth.SessionKeyState] = state
	if next := r.URL.Query().Get("next"); next != "" && next[0] == '/' {
		session.Values[auth.SessionKeyOriginalURL] = next
	}
	if err := auth.SaveSession(r, w, session); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	redirect := fmt.Sprintf("%s/authorize?response_type=token&client_id=%s&redirect_uri=%s&state=%s",
		h.cfg.Auth.AuthServerURL,
		url.QueryEscape(h.cfg.Auth.ClientID),
		url.QueryEscape(h.cfg.BaseURL+"/auth/callback"),
		url.QueryEscape(state))
	http.Redirect(w, r, redirect, http.StatusFound)
}

// Callback handles GET /auth/callback.
// Verifies the OAuth state and stores the issued JWT in the auth cookie.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	session, err := auth.GetSession(r)
	if err != nil {
		http.Error(w, "invalid session", http.StatusBadRequest)
		return
	}

	expectedState, _ := session.Values[auth.SessionKeyState].(string)
	if expectedState == "" || r.URL.Query().Get("state") != expectedState {
		h.logger.Warn("OAuth state mismatch", zap.String("remote_addr", r.RemoteAddr))
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}

	originalURL, _ := session.Values[auth.SessionKeyOriginalURL].(string)
	if originalURL == "" {
		originalURL = "/"
	}

	auth.ClearSessionValues(session)
	if err := auth.SaveSession(r, w, session); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   !h.cfg.IsLocal(),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, originalURL, http.StatusFound)
}

// Logout handles POST /auth/logout by expiring the auth cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !h.cfg.IsLocal(),
		SameSite: http.SameSiteLaxMode,
	})
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cirvee/earnings-backend/internal/config"
	"github.com/cirvee/earnings-backend/internal/services"
	"github.com/cirvee/earnings-backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandler(t *testing.T) (*AuthHandler, *utils.JWTManager) {
	t.Helper()

	hash, err := utils.HashPassword("s3cret-admin-pass")
	require.NoError(t, err)

	jwtManager := utils.NewJWTManager("test-secret", 15*time.Minute)
	authService := services.NewAuthService(nil, jwtManager, &config.AdminConfig{
		Username:     "admin",
		PasswordHash: hash,
	})
	return NewAuthHandler(authService), jwtManager
}

func TestAdminLogin(t *testing.T) {
	h, jwtManager := newTestAuthHandler(t)

	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "s3cret-admin-pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	h.AdminLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	token, ok := body["adminToken"].(string)
	require.True(t, ok)

	claims, err := jwtManager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestAdminLogin_WrongCredentials(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"wrong_password", map[string]string{"username": "admin", "password": "wrong"}},
		{"wrong_username", map[string]string{"username": "root", "password": "s3cret-admin-pass"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _ := json.Marshal(tt.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(payload))
			rec := httptest.NewRecorder()

			h.AdminLogin(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "invalid credentials", body["error"])
		})
	}
}

func TestAdminLogin_MissingFields(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	payload, _ := json.Marshal(map[string]string{"username": "admin"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	h.AdminLogin(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "Password is required")
}

func TestValidateToken_MissingToken(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/earnings/validate-token", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	h.ValidateToken(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "token is required", body["error"])
}

func TestValidateToken_InvalidToken(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	payload, _ := json.Marshal(map[string]string{"token": "not.a.token"})
	req := httptest.NewRequest(http.MethodPost, "/api/earnings/validate-token", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	h.ValidateToken(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "invalid or expired token", body["error"])
}

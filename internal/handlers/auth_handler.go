package handlers

import (
	"net/http"
	"strings"

	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/repository"
	"github.com/cirvee/earnings-backend/internal/services"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// ValidateToken verifies a user token (from the body or the Authorization
// header) and returns the resolved identity.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateTokenRequest
	// Body is optional when a bearer header is present.
	_ = decodeJSON(r, &req)

	token := req.Token
	if token == "" {
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
	}
	if token == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	user, err := h.authService.ValidateToken(r.Context(), token)
	if err != nil {
		if err == repository.ErrUserNotFound {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

// AdminLogin checks the configured credential pair and returns an admin token.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	token, err := h.authService.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		if err == services.ErrInvalidCredentials {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"adminToken": token,
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/cirvee/earnings-backend/internal/cache"
	"github.com/cirvee/earnings-backend/internal/database"
)

type HealthHandler struct {
	db    *database.DB
	cache *cache.Cache
}

func NewHealthHandler(db *database.DB, cache *cache.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := map[string]string{
		"status":   "healthy",
		"database": "ok",
		"cache":    "ok",
	}

	status := http.StatusOK
	if err := h.db.Health(ctx); err != nil {
		response["status"] = "unhealthy"
		response["database"] = "error"
		status = http.StatusServiceUnavailable
	}

	if err := h.cache.Health(ctx); err != nil {
		response["status"] = "unhealthy"
		response["cache"] = "error"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response)
}

// Test is the public connectivity probe used by frontend deployments.
func (h *HealthHandler) Test(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, map[string]interface{}{
		"message": "Earnings API is running",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

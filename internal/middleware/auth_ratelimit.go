package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cirvee/earnings-backend/internal/cache"
)

// AuthRateLimiter provides stricter rate limiting for the admin login endpoint
type AuthRateLimiter struct {
	cache    *cache.Cache
	requests int
	window   time.Duration
}

func NewAuthRateLimiter(cache *cache.Cache, requests int, window time.Duration) *AuthRateLimiter {
	return &AuthRateLimiter{
		cache:    cache,
		requests: requests,
		window:   window,
	}
}

func (rl *AuthRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			ip = forwarded
		}

		// Use a different key prefix for auth rate limiting
		key := fmt.Sprintf("auth_rate_limit:%s:%s", r.URL.Path, ip)
		ctx := r.Context()

		count, err := rl.cache.Incr(ctx, key)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if count == 1 {
			rl.cache.Expire(ctx, key, rl.window)
		}

		if int(count) > rl.requests {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			writeAuthError(w, http.StatusTooManyRequests, "too many authentication attempts, please try again later")
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.requests))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", rl.requests-int(count)))

		next.ServeHTTP(w, r)
	})
}

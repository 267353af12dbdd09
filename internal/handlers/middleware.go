package handlers

import (
	"log"
	"net/http"
	"time"

	"stellarstep/internal/security"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	rateLimiter *security.RateLimiter
	tokenIssuer *security.ParentTokenIssuer
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(rateLimiter *security.RateLimiter, tokenIssuer *security.ParentTokenIssuer) *Middleware {
	return &Middleware{
		rateLimiter: rateLimiter,
		tokenIssuer: tokenIssuer,
	}
}

// RateLimit rejects clients exceeding the per-IP request budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondError(w, http.StatusTooManyRequests, "Too many requests, please slow down", nil)
			return
		}
		next(w, r)
	}
}

// RequireParent gates a route behind a parent access token. The guard is only
// active when a token secret is configured; without one the route stays open,
// matching deployments that rely on the frontend's parent-gate alone.
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.tokenIssuer == nil || !m.tokenIssuer.Enabled() {
			next(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "Parent access token required", nil)
			return
		}

		if _, err := m.tokenIssuer.Verify(token); err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired parent access token", nil)
			return
		}

		next(w, r)
	}
}

// bearerToken extracts the token from an Authorization: Bearer header
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

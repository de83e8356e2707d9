package handlers

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"eltopo/internal/security"
	"eltopo/internal/session"
)

type contextKey string

// IdentityContextKey carries the request's resolved identity
const IdentityContextKey contextKey = "identity"

// Middleware bundles the cross-cutting request wrappers
type Middleware struct {
	tokenKey    []byte
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates the middleware set
func NewMiddleware(tokenKey []byte) *Middleware {
	return &Middleware{
		tokenKey:    tokenKey,
		rateLimiter: security.NewRateLimiter(10, time.Minute),
	}
}

// Logging logs every request with its duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Call next handler
		next.ServeHTTP(w, r)

		// Log request
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// RateLimit rejects clients that create sessions too quickly
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// WithIdentity resolves the caller's identity from a user header or a
// signed guest token and requires one of the two to be present. User
// authentication itself lives outside this service; the X-User-ID value
// is trusted to have been vetted upstream.
func (m *Middleware) WithIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.resolveIdentity(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "missing or invalid identity", "", nil)
			return
		}
		ctx := context.WithValue(r.Context(), IdentityContextKey, id)
		next(w, r.WithContext(ctx))
	}
}

func (m *Middleware) resolveIdentity(r *http.Request) (session.Identity, bool) {
	if userID := r.Header.Get("X-User-ID"); userID != "" {
		return session.Identity{UserID: userID}, true
	}

	token := r.Header.Get("Authorization")
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return session.Identity{}, false
	}

	guestID, err := session.ParseGuestToken(token, m.tokenKey)
	if err != nil {
		return session.Identity{}, false
	}
	return session.Identity{GuestID: guestID}, true
}

// IdentityFromContext retrieves the resolved identity from the request context
func IdentityFromContext(ctx context.Context) session.Identity {
	id, _ := ctx.Value(IdentityContextKey).(session.Identity)
	return id
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

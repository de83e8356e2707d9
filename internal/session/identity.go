package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"eltopo/internal/models"
)

// Identity is the local device's identity, registered user or anonymous
// guest. Exactly one of the two ids is set. It is the single place the
// "who is host" question is answered.
type Identity struct {
	UserID  string
	GuestID string
}

// IsHost reports whether this identity is the authoritative controller
// of the session's ephemeral phase broadcasts.
func (id Identity) IsHost(s *models.Session) bool {
	if s == nil {
		return false
	}
	if id.UserID != "" && s.HostUserID == id.UserID {
		return true
	}
	return id.GuestID != "" && s.HostGuestID == id.GuestID
}

// Key returns the identity's stable id, used as broadcast sender id.
func (id Identity) Key() string {
	if id.UserID != "" {
		return id.UserID
	}
	return id.GuestID
}

// NewGuestID mints a fresh anonymous guest id.
func NewGuestID() string {
	return uuid.NewString()
}

// SignGuestToken issues a signed token proving ownership of a guest id
// across reconnects.
func SignGuestToken(guestID string, key []byte, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   guestID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ParseGuestToken verifies a guest token and returns the guest id.
func ParseGuestToken(tokenString string, key []byte) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid guest token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("guest token missing subject")
	}
	return claims.Subject, nil
}

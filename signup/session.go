package signup

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/burrowblog/burrow/config"
	"github.com/burrowblog/burrow/errs"
)

// SessionManager issues and verifies dashboard session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(c map[string]string) *SessionManager {
	return &SessionManager{
		secret: []byte(config.GetString(c, "SESSION_SECRET", "")),
		ttl:    time.Duration(config.GetInt(c, "SESSION_TTL_HOURS", 24*7)) * time.Hour,
	}
}

// Issue returns a signed session token for the user.
func (m *SessionManager) Issue(userID uuid.UUID) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("SESSION_SECRET is not configured")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})
	return token.SignedString(m.secret)
}

// Verify parses a session token and returns the user it belongs to.
func (m *SessionManager) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		})
	if err != nil || !token.Valid {
		return uuid.Nil, errs.NewUnauthorizedError("invalid session token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, errs.NewUnauthorizedError("invalid session token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errs.NewUnauthorizedError("invalid session token")
	}
	return userID, nil
}

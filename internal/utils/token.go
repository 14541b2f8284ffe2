package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// SessionClaims carries the subject id plus the profile fields the
// middleware and Google-signup precondition need without a store read.
type SessionClaims struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret     []byte
	sessionTTL time.Duration
}

func NewTokenManager(secret string, sessionTTLHours int) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		sessionTTL: time.Duration(sessionTTLHours) * time.Hour,
	}
}

// GenerateSessionToken issues an HS256 session token for the user.
func (m *TokenManager) GenerateSessionToken(userID, email, username, role string) (string, time.Time, error) {
	exp := time.Now().Add(m.sessionTTL)
	claims := &SessionClaims{
		Email:    email,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, exp, nil
}

// ParseSessionToken parses and validates a session token.
func (m *TokenManager) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

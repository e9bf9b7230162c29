// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AdminSessionClaims is the payload of console session tokens issued by this
// service after a successful password check. The shared password itself never
// leaves the server.
type AdminSessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var (
	sessionSecret = []byte("your-secret-key-change-in-production")
	authSecret    []byte
)

func SetJWTSecrets(session, auth string) {
	sessionSecret = []byte(session)
	authSecret = []byte(auth)
}

// GenerateAdminSession issues a short-lived signed session token.
func GenerateAdminSession(ttlHours int) (string, error) {
	claims := AdminSessionClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(ttlHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "exetool-store",
			Subject:   "admin",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sessionSecret)
}

func ValidateAdminSession(tokenString string) (*AdminSessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminSessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return sessionSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AdminSessionClaims); ok && token.Valid && claims.Role == "admin" {
		return claims, nil
	}

	return nil, errors.New("invalid session token")
}

// ValidateAccessToken verifies a shopper access token issued by the auth
// provider and returns the subject user id.
func ValidateAccessToken(tokenString string) (string, error) {
	if len(authSecret) == 0 {
		return "", errors.New("auth secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return authSecret, nil
	})

	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*jwt.RegisteredClaims); ok && token.Valid && claims.Subject != "" {
		return claims.Subject, nil
	}

	return "", errors.New("invalid access token")
}

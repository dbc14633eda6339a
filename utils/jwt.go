package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"riverside/config"
)

// SessionDuration is how long a login session stays valid.
const SessionDuration = 72 * time.Hour

// ResetTokenDuration is how long a password-reset link stays valid.
const ResetTokenDuration = 30 * time.Minute

const resetPurpose = "password-reset"

// Claims defines the session token claims.
type Claims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// ResetClaims defines the claims carried by a password-reset link token.
type ResetClaims struct {
	UserID  uint   `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// GenerateSessionToken issues a signed session token for the given user.
func GenerateSessionToken(userID uint, name string, duration time.Duration) (string, error) {
	cfg := config.Get()

	claims := Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SecretKey))
}

// ParseSessionToken validates a session token and returns its claims.
func ParseSessionToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// GenerateResetToken issues a short-lived token authorizing a password
// change for the given user without re-authentication.
func GenerateResetToken(userID uint) (string, error) {
	cfg := config.Get()

	claims := ResetClaims{
		UserID:  userID,
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ResetTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SecretKey))
}

// VerifyResetToken checks a reset token and confirms it authorizes the given user.
func VerifyResetToken(tokenStr string, userID uint) error {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &ResetClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.SecretKey), nil
	})
	if err != nil {
		return err
	}

	claims, ok := parsed.Claims.(*ResetClaims)
	if !ok || !parsed.Valid {
		return errors.New("invalid token claims")
	}
	if claims.Purpose != resetPurpose {
		return errors.New("token purpose mismatch")
	}
	if claims.UserID != userID {
		return errors.New("token user mismatch")
	}
	return nil
}

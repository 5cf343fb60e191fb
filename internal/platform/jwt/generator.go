// Package jwtmw issues and checks the bearer tokens handed out after a successful login.
package jwtmw

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	EnvKeyJWTSecret     = "JWT_SECRET"
	EnvKeyJWTExpiration = "JWT_EXPIRATION"

	defaultExpiration = time.Hour
)

// Config holds token settings.
type Config struct {
	Secret     string
	Expiration time.Duration
}

// LoadConfig reads JWT_SECRET and JWT_EXPIRATION (a time.Duration string, default 1h).
func LoadConfig() Config {
	cfg := Config{
		Secret:     os.Getenv(EnvKeyJWTSecret),
		Expiration: defaultExpiration,
	}
	if d, err := time.ParseDuration(os.Getenv(EnvKeyJWTExpiration)); err == nil && d > 0 {
		cfg.Expiration = d
	}
	return cfg
}

// generator signs HS256 tokens.
type generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// GenerateToken creates a signed JWT token with standard claims.
func (g *generator) GenerateToken(userID uint, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   now.Add(g.expiration).Unix(),
		"iat":   now.Unix(),
		"email": email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/redis"
	pkgerrors "github.com/pikoUsername/roblox-searcher-backend/pkg/errors"
)

// AdminTokenKey is where the currently valid admin JWT lives; overwriting it
// on login revokes the previous one.
const AdminTokenKey = "admin:token"

type AuthService interface {
	Login(ctx context.Context, password string) (string, error)
}

type authService struct {
	cache        redis.RedisClient
	jwtSecret    string
	passwordHash string
}

func NewAuthService(cache redis.RedisClient, jwtSecret, passwordHash string) *authService {
	return &authService{cache: cache, jwtSecret: jwtSecret, passwordHash: passwordHash}
}

func (s *authService) Login(ctx context.Context, password string) (string, error) {
	if s.passwordHash == "" {
		slog.Error("admin password hash is not configured")
		return "", pkgerrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		slog.Error("invalid admin password")
		return "", pkgerrors.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		slog.Error("failed to generate JWT", "error", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.cache.Set(ctx, AdminTokenKey, tokenString, time.Hour); err != nil {
		slog.Error("failed to cache admin JWT", "error", err)
	}

	slog.Info("admin logged in")
	return tokenString, nil
}

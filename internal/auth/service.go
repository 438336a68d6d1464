// Package auth registers accounts and issues access tokens for them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediafeed/service/internal/config"
	"github.com/mediafeed/service/internal/middleware"
	"github.com/mediafeed/service/internal/user"
)

// ErrInvalidCredentials is returned when the email or password does not match
// an active account.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service contains the business logic for email/password authentication.
type Service struct {
	userSvc *user.Service
	secret  []byte
	ttl     time.Duration
}

// NewService creates a new auth Service.
func NewService(userSvc *user.Service, cfg *config.Config) *Service {
	return &Service{userSvc: userSvc, secret: []byte(cfg.JWTSecret), ttl: cfg.JWTTTL}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.userSvc.Create(ctx, email, string(hash))
}

// Login checks the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userSvc.GetByEmail(ctx, email)
	if err != nil {
		if s.userSvc.IsNotFound(err) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(u.ID, u.Email, time.Now())
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(userID, email string, now time.Time) (string, error) {
	claims := middleware.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

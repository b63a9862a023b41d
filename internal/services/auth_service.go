package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rentalbill/internal/caching"
	"rentalbill/internal/models"
	"rentalbill/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL           = time.Hour
	loginFailureLimit  = 10
	loginFailureWindow = 15 * time.Minute
)

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID    uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	jwt.RegisteredClaims
}

// LoginResult carries the signed token plus the display fields the dashboard
// stores client-side.
type LoginResult struct {
	Token     string      `json:"token"`
	Role      models.Role `json:"role"`
	ID        uuid.UUID   `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	HashPassword(password string) (string, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	cacheSvc  caching.CacheService
	jwtSecret []byte
}

func NewAuthService(userRepo repositories.UserRepository, cacheSvc caching.CacheService, jwtSecret string) AuthService {
	return &authService{
		userRepo:  userRepo,
		cacheSvc:  cacheSvc,
		jwtSecret: []byte(jwtSecret),
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err == pgx.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	// The throttle is consulted before the password check so a locked-out
	// username stays locked out until the window expires, and so throttled
	// requests skip the bcrypt work entirely.
	count, cacheErr := s.cacheSvc.LoginFailures(ctx, username)
	if cacheErr != nil {
		// Throttling state is advisory; a cache hiccup must not block login.
		log.Printf("read login failures for %s: %v", username, cacheErr)
	} else if count > loginFailureLimit {
		return nil, ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		count, cacheErr := s.cacheSvc.IncrementLoginFailure(ctx, username, loginFailureWindow)
		if cacheErr == nil && count > loginFailureLimit {
			return nil, ErrTooManyAttempts
		}
		return nil, ErrInvalidPassword
	}

	if err := s.cacheSvc.ResetLoginFailures(ctx, username); err != nil {
		log.Printf("reset login failures for %s: %v", username, err)
	}

	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &LoginResult{
		Token:     signed,
		Role:      user.Role,
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *authService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

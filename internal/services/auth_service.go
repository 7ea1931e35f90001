package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/pkg/events"
)

// AuthService handles registration, login and the token lifecycle.
type AuthService struct {
	userRepo      repositories.UserRepository
	mqClient      *events.Client
	jwtSecret     []byte
	tokenLifetime time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, mqClient *events.Client, jwtSecret string, tokenLifetime time.Duration) *AuthService {
	if tokenLifetime <= 0 {
		tokenLifetime = 24 * time.Hour
	}
	return &AuthService{
		userRepo:      userRepo,
		mqClient:      mqClient,
		jwtSecret:     []byte(jwtSecret),
		tokenLifetime: tokenLifetime,
	}
}

// Register creates a new active user with the "user" role, hashes the
// password, and returns the stored user with a fresh token.
func (s *AuthService) Register(username, email, password string) (*models.User, string, error) {
	// Uniqueness pre-checks are case-sensitive, matching the store indices.
	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return nil, "", fmt.Errorf("%w: username '%s' already taken", ErrConflict, username)
	}
	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, "", fmt.Errorf("%w: email '%s' already registered", ErrConflict, email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	if err := s.mqClient.Publish(events.UserRegistered, user.Ref()); err != nil {
		log.Printf("Warning: failed to publish %s event for user %d: %v", events.UserRegistered, user.ID, err)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a user and returns the user with a fresh token.
// Failures are reported uniformly so the response never reveals whether the
// username exists.
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, "", fmt.Errorf("%w: account is deactivated", ErrUnauthorized)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs a token bound to the user id with the configured lifetime.
func (s *AuthService) IssueToken(userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.tokenLifetime).Unix(),
		"iat":     time.Now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken parses and validates a token, returning the bound user id.
func (s *AuthService) VerifyToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	return uint(userID), nil
}

// ResolveUser verifies a token and loads the bound user. A valid token for a
// missing or deactivated account is rejected with ErrForbidden; role and
// active status always reflect the store, not the token.
func (s *AuthService) ResolveUser(tokenString string) (*models.User, error) {
	userID, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", ErrForbidden)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", ErrForbidden)
	}
	return user, nil
}

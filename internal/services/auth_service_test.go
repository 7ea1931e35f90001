package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"bazaar/internal/models"
	"bazaar/internal/repositories"
	"bazaar/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

const testJWTSecret = "test_jwt_secret"

func newAuthService(repo repositories.UserRepository) *services.AuthService {
	return services.NewAuthService(repo, nil, testJWTSecret, time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	notFound := fmt.Errorf("user: %w", repositories.ErrNotFound)

	// Successful registration issues a token for the stored user.
	mockRepo.On("GetByUsername", "newuser").Return(nil, notFound).Once()
	mockRepo.On("GetByEmail", "new@example.com").Return(nil, notFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = 1
	}).Return(nil).Once()

	user, token, err := authService.Register("newuser", "new@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Username taken
	mockRepo.On("GetByUsername", "newuser").Return(&models.User{ID: 2}, nil).Once()
	_, _, err = authService.Register("newuser", "other@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "username 'newuser' already taken")
	mockRepo.AssertExpectations(t)

	// Email taken
	mockRepo.On("GetByUsername", "otheruser").Return(nil, notFound).Once()
	mockRepo.On("GetByEmail", "new@example.com").Return(&models.User{ID: 2}, nil).Once()
	_, _, err = authService.Register("otheruser", "new@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "email 'new@example.com' already registered")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       7,
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Role:     models.RoleUser,
		IsActive: true,
	}

	// Successful login
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	loggedIn, token, err := authService.Login("testuser", "password123")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)

	// The token is bound to the user id.
	userID, err := authService.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	_, _, err = authService.Login("testuser", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)

	// Unknown username reports the same generic message.
	mockRepo.On("GetByUsername", "nobody").Return(nil, fmt.Errorf("user: %w", repositories.ErrNotFound)).Once()
	_, _, err = authService.Login("nobody", "password123")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)

	// Deactivated account
	inactive := *user
	inactive.IsActive = false
	mockRepo.On("GetByUsername", "testuser").Return(&inactive, nil).Once()
	_, _, err = authService.Login("testuser", "password123")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Contains(t, err.Error(), "deactivated")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_VerifyToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	// Valid token
	token, err := authService.IssueToken(42)
	assert.NoError(t, err)
	userID, err := authService.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	// Garbage token
	_, err = authService.VerifyToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Token signed with another secret
	otherService := services.NewAuthService(mockRepo, nil, "other_secret", time.Hour)
	foreign, _ := otherService.IssueToken(42)
	_, err = authService.VerifyToken(foreign)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Expired token
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, _ := expired.SignedString([]byte(testJWTSecret))
	_, err = authService.VerifyToken(expiredString)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuthService_ResolveUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	active := &models.User{ID: 5, Username: "active", IsActive: true}
	token, _ := authService.IssueToken(5)

	mockRepo.On("GetByID", uint(5)).Return(active, nil).Once()
	resolved, err := authService.ResolveUser(token)
	assert.NoError(t, err)
	assert.Equal(t, active.Username, resolved.Username)
	mockRepo.AssertExpectations(t)

	// A valid token for a deactivated account is forbidden.
	inactive := &models.User{ID: 5, Username: "active", IsActive: false}
	mockRepo.On("GetByID", uint(5)).Return(inactive, nil).Once()
	_, err = authService.ResolveUser(token)
	assert.ErrorIs(t, err, services.ErrForbidden)
	mockRepo.AssertExpectations(t)

	// A valid token for a vanished account is forbidden.
	mockRepo.On("GetByID", uint(5)).Return(nil, fmt.Errorf("user: %w", repositories.ErrNotFound)).Once()
	_, err = authService.ResolveUser(token)
	assert.ErrorIs(t, err, services.ErrForbidden)
	mockRepo.AssertExpectations(t)
}

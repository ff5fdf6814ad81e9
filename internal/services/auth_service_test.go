package services_test

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
	"taskroom/internal/services"
	"taskroom/pkg/mailer"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if user.ID == "" {
		user.ID = models.NewID()
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func newAuthService(repo *MockUserRepository, notifier *MockNotifier) (*services.AuthService, *services.TokenManager) {
	tokens := services.NewTokenManager(testJWTSecret, time.Hour, time.Hour)
	return services.NewAuthService(repo, tokens, services.NewPasswordHasher(bcrypt.MinCost), notifier, "http://localhost:3000"), tokens
}

func hashedUser(t *testing.T, verified bool) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:             models.NewID(),
		Username:       "testuser",
		Email:          "test@example.com",
		EmailVerified:  verified,
		HashedPassword: string(hashed),
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService, _ := newAuthService(mockRepo, new(MockNotifier))

	// Test successful registration
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, apperrors.NotFound("User with email test@example.com not found")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := authService.Register(ctx, services.RegisterInput{Name: "testuser", Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, "password123", user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Test email already registered
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(&models.User{ID: models.NewID()}, nil).Once()
	_, err = authService.Register(ctx, services.RegisterInput{Username: "other", Email: "test@example.com", Password: "password123"})
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Equal(t, "User already exists", err.Error())
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestAuthService_Register_ValidationFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService, _ := newAuthService(mockRepo, new(MockNotifier))

	mockRepo.On("GetByEmail", ctx, "not-an-email").Return(nil, apperrors.NotFound("not found")).Once()
	_, err := authService.Register(ctx, services.RegisterInput{Username: "ab", Email: "not-an-email", Password: "pw"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "username")
	assert.Contains(t, err.Error(), "email")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_AuthenticateCredentials(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService, _ := newAuthService(mockRepo, new(MockNotifier))
	user := hashedUser(t, true)

	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Twice()
	principal, err := authService.AuthenticateCredentials(ctx, user.Email, "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)

	_, err = authService.AuthenticateCredentials(ctx, user.Email, "wrongpassword")
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Invalid credentials")

	// Unknown emails look the same as wrong passwords
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.NotFound("User with email nobody@example.com not found")).Once()
	_, err = authService.AuthenticateCredentials(ctx, "nobody@example.com", "password123")
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "Invalid credentials")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	authService, tokens := newAuthService(new(MockUserRepository), new(MockNotifier))

	verified := hashedUser(t, true)
	token, err := authService.Login(verified)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tokens.Parse(token, services.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, verified.ID, claims.UserID)

	// Validate the token structure
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, verified.ID, mapClaims["id"])
	assert.NotEmpty(t, mapClaims["jti"])

	_, err = authService.Login(hashedUser(t, false))
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	assert.Equal(t, "Email not verified", err.Error())
}

func TestAuthService_AuthenticateToken(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService, tokens := newAuthService(mockRepo, new(MockNotifier))
	user := hashedUser(t, true)

	access, err := tokens.Issue(user.ID, services.PurposeAccess)
	require.NoError(t, err)
	mockRepo.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	principal, err := authService.AuthenticateToken(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)

	// Verification tokens cannot authenticate requests
	verification, err := tokens.Issue(user.ID, services.PurposeEmailVerification)
	require.NoError(t, err)
	_, err = authService.AuthenticateToken(ctx, verification)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, err = authService.AuthenticateToken(ctx, "invalid.token.string")
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	// Test expired token
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		UserID:         user.ID,
		Purpose:        services.PurposeAccess,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
	})
	expiredString, err := expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = authService.AuthenticateToken(ctx, expiredString)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	// A token for a deleted user does not authenticate
	mockRepo.On("GetByID", ctx, user.ID).Return(nil, apperrors.NotFound("User ID %s not found", user.ID)).Once()
	_, err = authService.AuthenticateToken(ctx, access)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_SendVerificationEmail(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	notifier := new(MockNotifier)
	authService, tokens := newAuthService(mockRepo, notifier)
	user := hashedUser(t, false)

	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	notifier.On("Send", ctx, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == user.Email && msg.Subject == mailer.VerificationSubject
	})).Return(nil).Once()

	already, err := authService.SendVerificationEmail(ctx, user.Email, "https://app.taskroom.dev")
	require.NoError(t, err)
	assert.False(t, already)
	notifier.AssertExpectations(t)

	msg := notifier.Calls[0].Arguments.Get(1).(mailer.Message)
	assert.Contains(t, msg.HTML, "https://app.taskroom.dev/verifyEmail/")
	assert.Contains(t, msg.HTML, "Hi testuser!")

	// Verified users are not mailed again
	mockRepo.On("GetByEmail", ctx, "done@example.com").Return(&models.User{ID: models.NewID(), EmailVerified: true}, nil).Once()
	already, err = authService.SendVerificationEmail(ctx, "done@example.com", "")
	require.NoError(t, err)
	assert.True(t, already)

	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.NotFound("User with email nobody@example.com not found")).Once()
	_, err = authService.SendVerificationEmail(ctx, "nobody@example.com", "")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "User not found", err.Error())

	// Delivery failures surface to the caller
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	notifier.On("Send", ctx, mock.Anything).Return(errors.New("smtp down")).Once()
	_, err = authService.SendVerificationEmail(ctx, user.Email, "")
	assert.Error(t, err)

	// Verification tokens in the link are accepted by VerifyEmail
	_, err = tokens.Parse(extractToken(t, msg.HTML), services.PurposeEmailVerification)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService, tokens := newAuthService(mockRepo, new(MockNotifier))
	user := hashedUser(t, false)

	token, err := tokens.Issue(user.ID, services.PurposeEmailVerification)
	require.NoError(t, err)
	mockRepo.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool { return u.EmailVerified })).Return(nil).Once()

	require.NoError(t, authService.VerifyEmail(ctx, token))
	mockRepo.AssertExpectations(t)

	// Invalid tokens fail without touching the user
	err = authService.VerifyEmail(ctx, "garbage")
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	access, err := tokens.Issue(user.ID, services.PurposeAccess)
	require.NoError(t, err)
	err = authService.VerifyEmail(ctx, access)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	// Expired verification tokens fail the same way
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		UserID:         user.ID,
		Purpose:        services.PurposeEmailVerification,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
	})
	expiredString, err := expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	err = authService.VerifyEmail(ctx, expiredString)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	mockRepo.AssertNumberOfCalls(t, "GetByID", 1)
	mockRepo.AssertNumberOfCalls(t, "Update", 1)
}

func extractToken(t *testing.T, html string) string {
	t.Helper()
	const marker = "/verifyEmail/"
	start := strings.Index(html, marker)
	require.GreaterOrEqual(t, start, 0)
	rest := html[start+len(marker):]
	end := strings.Index(rest, `"`)
	require.Greater(t, end, 0)
	return rest[:end]
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
	"taskroom/internal/repositories"
	"taskroom/internal/validation"
	"taskroom/pkg/mailer"
)

// Notifier delivers outbound email.
type Notifier interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// AuthService handles business logic for authentication and email verification.
type AuthService struct {
	userRepo repositories.UserRepository
	tokens   *TokenManager
	hasher   *PasswordHasher
	notifier Notifier
	validate *validator.Validate
	appURL   string
}

// NewAuthService creates a new AuthService. appURL is the link origin used
// when a verification request carries no Origin header.
func NewAuthService(userRepo repositories.UserRepository, tokens *TokenManager, hasher *PasswordHasher, notifier Notifier, appURL string) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		validate: validation.New(),
		appURL:   appURL,
	}
}

// Register creates an unverified user after checking the email is free.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = strings.TrimSpace(input.Name)
	}
	email := strings.TrimSpace(input.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.Conflict("User already exists")
	}
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if input.Password == "" {
		return nil, apperrors.Validation("User validation failed: password: Path `password` is required.")
	}
	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
	}
	if err := validation.Check(s.validate, "User", user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict("User already exists")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Printf("User %s registered", user.ID)
	return user, nil
}

// AuthenticateCredentials resolves the user owning email and password.
// Unknown emails and wrong passwords are reported identically.
func (s *AuthService) AuthenticateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !s.hasher.Compare(user.HashedPassword, password) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	return user, nil
}

// AuthenticateToken resolves the user named by an access token.
func (s *AuthService) AuthenticateToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.tokens.Parse(tokenString, PurposeAccess)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("Invalid or expired token")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// Login issues an access token for an authenticated principal with a verified email.
func (s *AuthService) Login(principal *models.User) (string, error) {
	if !principal.EmailVerified {
		return "", apperrors.Unauthorized("Email not verified")
	}
	token, err := s.tokens.Issue(principal.ID, PurposeAccess)
	if err != nil {
		return "", err
	}
	log.Printf("User %s logged in", principal.ID)
	return token, nil
}

// SendVerificationEmail mails a verification link to the user owning email.
// It reports alreadyVerified without sending anything when there is nothing to do.
func (s *AuthService) SendVerificationEmail(ctx context.Context, email, origin string) (alreadyVerified bool, err error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, apperrors.NotFound("User not found")
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.EmailVerified {
		return true, nil
	}

	token, err := s.tokens.Issue(user.ID, PurposeEmailVerification)
	if err != nil {
		return false, err
	}
	if origin == "" {
		origin = s.appURL
	}
	body, err := mailer.VerificationEmailHTML(user.Username, token, origin)
	if err != nil {
		return false, err
	}
	msg := mailer.Message{To: user.Email, Subject: mailer.VerificationSubject, HTML: body}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("failed to send verification email: %w", err)
	}

	log.Printf("Verification email for user %s dispatched", user.ID)
	return false, nil
}

// VerifyEmail marks the user named by a verification token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Parse(tokenString, PurposeEmailVerification)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	user.EmailVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}
	log.Printf("User %s verified email", user.ID)
	return nil
}

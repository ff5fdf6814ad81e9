package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"taskroom/internal/apperrors"
	"taskroom/internal/models"
)

// PrincipalHandler is a handler that receives the authenticated user explicitly.
type PrincipalHandler func(c *fiber.Ctx, principal *models.User) error

// TokenAuthenticator resolves the user named by a bearer token.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*models.User, error)
}

// CredentialAuthenticator resolves the user owning an email and password.
type CredentialAuthenticator interface {
	AuthenticateCredentials(ctx context.Context, email, password string) (*models.User, error)
}

// Authenticator builds Fiber handlers that resolve a principal before calling
// a PrincipalHandler.
type Authenticator struct {
	tokens      TokenAuthenticator
	credentials CredentialAuthenticator
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(tokens TokenAuthenticator, credentials CredentialAuthenticator) *Authenticator {
	return &Authenticator{tokens: tokens, credentials: credentials}
}

// Bearer requires a valid "Authorization: Bearer <token>" header.
func (a *Authenticator) Bearer(next PrincipalHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.Unauthorized("Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			return apperrors.Unauthorized("Authorization header format must be 'Bearer <token>'")
		}

		principal, err := a.tokens.AuthenticateToken(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return err
		}
		return next(c, principal)
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials requires an email and password in the request body.
func (a *Authenticator) Credentials(next PrincipalHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.Wrap(apperrors.KindValidation, err, "Invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return apperrors.Validation("Missing credentials")
		}

		principal, err := a.credentials.AuthenticateCredentials(c.UserContext(), strings.TrimSpace(req.Email), req.Password)
		if err != nil {
			log.Printf("Credential check failed for %s: %v", req.Email, err)
			return err
		}
		return next(c, principal)
	}
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskroom/internal/middleware"
	"taskroom/internal/models"
	"taskroom/internal/services"
)

// AuthHandler handles HTTP requests for registration, login and email verification.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth *middleware.Authenticator) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", auth.Credentials(h.HandleLogin))
	authRoutes.Post("/verify", h.HandleSendVerificationEmail)
	authRoutes.Patch("/verifyEmail", h.HandleVerifyEmail)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if _, err := h.authService.Register(c.UserContext(), input); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
	})
}

// HandleLogin issues a token to a principal resolved from local credentials.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx, principal *models.User) error {
	token, err := h.authService.Login(principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token})
}

type sendVerificationRequest struct {
	Email string `json:"email"`
}

// HandleSendVerificationEmail mails a verification link to the given address.
func (h *AuthHandler) HandleSendVerificationEmail(c *fiber.Ctx) error {
	var req sendVerificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	alreadyVerified, err := h.authService.SendVerificationEmail(c.UserContext(), req.Email, c.Get(fiber.HeaderOrigin))
	if err != nil {
		return err
	}
	if alreadyVerified {
		return c.Status(fiber.StatusAlreadyReported).JSON(fiber.Map{"message": "Email already verified"})
	}
	return c.JSON(fiber.Map{"message": "Email sent"})
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

// HandleVerifyEmail marks the email named by a verification token as verified.
func (h *AuthHandler) HandleVerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.authService.VerifyEmail(c.UserContext(), req.Token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Email verified"})
}

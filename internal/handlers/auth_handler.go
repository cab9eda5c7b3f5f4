package handlers

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"socialapp/internal/apperr"
	"socialapp/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	now         func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		now:         time.Now,
	}
}

// RegisterRoutes registers the authentication routes. authRequired guards
// the ones that need an access token.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Post("/signup", h.HandleSignup)
	router.Post("/login", h.HandleLogin)
	router.Post("/token/refresh", h.HandleRefresh)
	router.Post("/forgot-password", h.HandleForgotPassword)
	router.Post("/reset-password", h.HandleResetPassword)
	router.Get("/is_superuser", authRequired, h.HandleIsSuperuser)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Username    string `json:"username" validate:"required,max=20"`
	Email       string `json:"email" validate:"required,email,max=50"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"required,max=50"`
	LastName    string `json:"last_name" validate:"required,max=50"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	BirthDate   string `json:"birth_date" validate:"required"`
	Bio         string `json:"bio"`
}

// HandleSignup creates an inactive account and sends its activation code.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(h.validate, req); err != nil {
		return err
	}
	birthDate, err := parseBirthDate(req.BirthDate, h.now())
	if err != nil {
		return apperr.ValidationFields("Validation failed", map[string]string{"birth_date": err.Error()})
	}

	profile, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
		BirthDate:   birthDate,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User and profile created successfully",
		"user_id": profile.ID,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues an access and a refresh token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}

	tokens, profile, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
		"user":    profile,
	})
}

// HandleRefresh exchanges a refresh token for a new access token.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if req.Refresh == "" {
		return apperr.ValidationFields("Refresh token is missing", map[string]string{"refresh": "this field is required"})
	}

	access, err := h.authService.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"access": access})
}

// HandleForgotPassword sends a password reset code to the given email.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "OTP sent to your email address"})
}

// HandleResetPassword sets a new password using the emailed code.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		OTP      string `json:"otp" validate:"required"`
		Password string `json:"password" validate:"required"`
		// older clients send new_password
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if req.Password == "" {
		req.Password = req.NewPassword
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.UserContext(), req.Email, req.OTP, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

// HandleIsSuperuser reports whether the caller is a superuser.
func (h *AuthHandler) HandleIsSuperuser(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	isSuperuser, err := h.authService.IsSuperuser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"is_superuser": isSuperuser})
}

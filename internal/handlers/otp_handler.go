package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"socialapp/internal/services"
)

// OTPHandler handles account verification codes.
type OTPHandler struct {
	service  *services.OTPService
	validate *validator.Validate
}

func NewOTPHandler(service *services.OTPService) *OTPHandler {
	return &OTPHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the otp routes. They are reachable without a
// token.
func (h *OTPHandler) RegisterRoutes(router fiber.Router) {
	router.Patch("/:id/verify_otp", h.HandleVerify)
	router.Patch("/:id/regenerate_otp", h.HandleRegenerate)
}

// HandleVerify activates the profile when the code matches.
func (h *OTPHandler) HandleVerify(c *fiber.Ctx) error {
	var req struct {
		OTP string `json:"otp" validate:"required,len=6,numeric"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}

	if err := h.service.Verify(c.UserContext(), c.Params("id"), req.OTP); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Verification successful"})
}

// HandleRegenerate sends a new code, spending one regeneration.
func (h *OTPHandler) HandleRegenerate(c *fiber.Ctx) error {
	if err := h.service.Regenerate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "A new OTP code has been sent"})
}

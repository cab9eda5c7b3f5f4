package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"socialapp/internal/services"
)

// ReportHandler files abuse reports and support inquiries.
type ReportHandler struct {
	service  *services.ReportService
	validate *validator.Validate
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the report routes under an authenticated router.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/report", h.HandleReport)
	router.Post("/inquiries", h.HandleInquiry)
}

// ReportRequest names either a comment or a profile, matching ReportType.
type ReportRequest struct {
	ReportType      string `json:"report_type" validate:"required,oneof=comment profile"`
	ReportedComment string `json:"reported_comment"`
	ReportedProfile string `json:"reported_profile"`
	Reason          string `json:"reason" validate:"required,max=255"`
}

// HandleReport files a report.
func (h *ReportHandler) HandleReport(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}

	report, err := h.service.Report(c.UserContext(), userID, services.ReportInput{
		Type:              req.ReportType,
		ReportedCommentID: req.ReportedComment,
		ReportedProfileID: req.ReportedProfile,
		Reason:            req.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Report submitted successfully.",
		"report":  report,
	})
}

// HandleInquiry files a support inquiry.
func (h *ReportHandler) HandleInquiry(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req struct {
		Subject string `json:"subject" validate:"required,max=255"`
		Content string `json:"content" validate:"required,max=255"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if err := validate(h.validate, req); err != nil {
		return err
	}

	inquiry, err := h.service.Inquiry(c.UserContext(), userID, req.Subject, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(inquiry)
}

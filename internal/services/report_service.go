package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
	"socialapp/internal/models"
	"socialapp/internal/otp"
	"socialapp/internal/repositories"
)

// ReportService files abuse reports and support inquiries.
type ReportService struct {
	reportRepo  repositories.ReportRepository
	profileRepo repositories.ProfileRepository
	commentRepo repositories.CommentRepository
	otp         *otp.Manager
	log         *logger.Logger
}

func NewReportService(
	reportRepo repositories.ReportRepository,
	profileRepo repositories.ProfileRepository,
	commentRepo repositories.CommentRepository,
	otpManager *otp.Manager,
	log *logger.Logger,
) *ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		profileRepo: profileRepo,
		commentRepo: commentRepo,
		otp:         otpManager,
		log:         log.With("service", "ReportService"),
	}
}

// ReportInput is a report submission. Exactly one of the reported ids is
// set, matching Type.
type ReportInput struct {
	Type              string
	ReportedCommentID string
	ReportedProfileID string
	Reason            string
}

// Report files a report against a comment or a profile.
func (s *ReportService) Report(ctx context.Context, userID string, in ReportInput) (*models.Report, error) {
	reporter, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" || utf8.RuneCountInString(reason) > maxContentLength {
		return nil, apperr.ValidationFields("invalid report", map[string]string{"reason": "required, at most 255 characters"})
	}

	report := &models.Report{ReporterID: reporter.ID, ReportType: in.Type, Reason: reason}
	switch in.Type {
	case models.ReportTypeComment:
		if in.ReportedCommentID == "" || in.ReportedProfileID != "" {
			return nil, apperr.ValidationFields("invalid report", map[string]string{"reported_comment": "comment id is required for comment reports"})
		}
		if _, err := s.commentRepo.Get(ctx, in.ReportedCommentID); err != nil {
			return nil, fromRepo(err, "comment")
		}
		report.ReportedCommentID = &in.ReportedCommentID
	case models.ReportTypeProfile:
		if in.ReportedProfileID == "" || in.ReportedCommentID != "" {
			return nil, apperr.ValidationFields("invalid report", map[string]string{"reported_profile": "profile id is required for profile reports"})
		}
		if _, err := s.profileRepo.Get(ctx, repositories.ProfileByID(in.ReportedProfileID)); err != nil {
			return nil, fromRepo(err, "profile")
		}
		report.ReportedProfileID = &in.ReportedProfileID
	default:
		return nil, apperr.ValidationFields("invalid report", map[string]string{"report_type": "must be comment or profile"})
	}

	if err := s.reportRepo.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	s.log.Info("report filed", "report_id", report.ID, "type", report.ReportType)
	return report, nil
}

// Inquiry files a support inquiry. Inactive profiles and profiles with an
// outstanding code are turned away.
func (s *ReportService) Inquiry(ctx context.Context, userID, subject, content string) (*models.UserInquiry, error) {
	profile, err := callerProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}

	subject = strings.TrimSpace(subject)
	content = strings.TrimSpace(content)
	fields := make(map[string]string)
	for name, v := range map[string]string{"subject": subject, "content": content} {
		switch {
		case v == "":
			fields[name] = "must not be empty"
		case utf8.RuneCountInString(v) > maxContentLength:
			fields[name] = "must not exceed 255 characters"
		}
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("invalid inquiry", fields)
	}
	if !profile.IsActive {
		return nil, apperr.Validation("user is not active")
	}
	if profile.OTPExpiry != nil && profile.OTPExpiry.After(s.otp.Now()) {
		return nil, apperr.Validation("user has an active otp")
	}

	inquiry := &models.UserInquiry{ProfileID: profile.ID, Subject: subject, Content: content}
	if err := s.reportRepo.CreateInquiry(ctx, inquiry); err != nil {
		return nil, err
	}
	s.log.Info("inquiry filed", "inquiry_id", inquiry.ID)
	return inquiry, nil
}

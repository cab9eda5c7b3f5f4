package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"socialapp/internal/models"
)

// ReportRepository stores abuse reports and support inquiries.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *models.Report) error
	CreateInquiry(ctx context.Context, inquiry *models.UserInquiry) error
}

// GORMReportRepository is a GORM implementation of ReportRepository.
type GORMReportRepository struct {
	db *gorm.DB
}

// NewGORMReportRepository creates a new instance of GORMReportRepository.
func NewGORMReportRepository(db *gorm.DB) *GORMReportRepository {
	return &GORMReportRepository{db: db}
}

// CreateReport saves a new report.
func (r *GORMReportRepository) CreateReport(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Reporter", "ReportedComment", "ReportedProfile").Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// CreateInquiry saves a new support inquiry.
func (r *GORMReportRepository) CreateInquiry(ctx context.Context, inquiry *models.UserInquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Profile").Create(inquiry).Error; err != nil {
		return fmt.Errorf("failed to create inquiry: %w", err)
	}
	return nil
}

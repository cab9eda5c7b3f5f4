package services

import (
	"context"
	"fmt"

	"socialapp/internal/logger"
	"socialapp/internal/models"
	"socialapp/internal/repositories"
)

// SupportGroupName is the group whose members review reports and inquiries.
const SupportGroupName = "Customer Support"

// DefaultCategories are the rating dimensions every deployment starts with.
var DefaultCategories = []models.Category{
	{ID: 1, Name: "Intelligence"},
	{ID: 2, Name: "Appearance"},
	{ID: 3, Name: "Relationship"},
}

var supportPermissions = []models.Permission{
	{Codename: "view_userinquiry", Name: "Can view user inquiry"},
	{Codename: "view_report", Name: "Can view report"},
}

// ProvisioningService seeds reference data. It runs from the provision
// command and can be repeated safely.
type ProvisioningService struct {
	categoryRepo repositories.CategoryRepository
	groupRepo    repositories.GroupRepository
	log          *logger.Logger
}

func NewProvisioningService(categoryRepo repositories.CategoryRepository, groupRepo repositories.GroupRepository, log *logger.Logger) *ProvisioningService {
	return &ProvisioningService{categoryRepo: categoryRepo, groupRepo: groupRepo, log: log.With("service", "ProvisioningService")}
}

// Provision seeds the categories and the support group.
func (s *ProvisioningService) Provision(ctx context.Context) error {
	if err := s.categoryRepo.Ensure(ctx, DefaultCategories); err != nil {
		return err
	}
	group, err := s.groupRepo.EnsureGroup(ctx, SupportGroupName, supportPermissions)
	if err != nil {
		return fmt.Errorf("failed to provision %s group: %w", SupportGroupName, err)
	}
	s.log.Info("provisioning complete", "categories", len(DefaultCategories), "group", group.Name, "permissions", len(group.Permissions))
	return nil
}

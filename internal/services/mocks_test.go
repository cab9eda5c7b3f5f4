package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"socialapp/internal/models"
	"socialapp/internal/notify"
	"socialapp/internal/repositories"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	args := m.Called(ctx, user, profile)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
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

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetPassword(ctx context.Context, id string, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockProfileRepository is a mock implementation of repositories.ProfileRepository.
// UpdateLocked runs fn against the profile returned by the expectation.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Get(ctx context.Context, key repositories.ProfileKey) (*models.Profile, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Search(ctx context.Context, query string, page repositories.Page) ([]models.Profile, int64, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepository) UpdateDetails(ctx context.Context, profile *models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository) UpdateLocked(ctx context.Context, key repositories.ProfileKey, fn func(*models.Profile) error) (*models.Profile, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	p := args.Get(0).(*models.Profile)
	if err := fn(p); err != nil {
		return nil, err
	}
	return p, args.Error(1)
}

func (m *MockProfileRepository) CategoryScores(ctx context.Context, profileID string) ([]models.ProfileCategoryScore, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProfileCategoryScore), args.Error(1)
}

func (m *MockProfileRepository) FollowCounts(ctx context.Context, profileID string) (int64, int64, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockCommentRepository is a mock implementation of repositories.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) CreateRating(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommentRepository) Get(ctx context.Context, id string) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) GetMany(ctx context.Context, ids []string) ([]models.Comment, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) list(args mock.Arguments) ([]models.Comment, int64, error) {
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) ListReceived(ctx context.Context, targetID string, page repositories.Page) ([]models.Comment, int64, error) {
	return m.list(m.Called(ctx, targetID, page))
}

func (m *MockCommentRepository) ListAuthored(ctx context.Context, authorID string, page repositories.Page) ([]models.Comment, int64, error) {
	return m.list(m.Called(ctx, authorID, page))
}

func (m *MockCommentRepository) ListFeed(ctx context.Context, followerID string, page repositories.Page) ([]models.Comment, int64, error) {
	return m.list(m.Called(ctx, followerID, page))
}

func (m *MockCommentRepository) ToggleReaction(ctx context.Context, commentID, profileID string, reaction repositories.Reaction) (bool, error) {
	args := m.Called(ctx, commentID, profileID, reaction)
	return args.Bool(0), args.Error(1)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Ensure(ctx context.Context, categories []models.Category) error {
	return m.Called(ctx, categories).Error(0)
}

// MockFollowRepository is a mock implementation of repositories.FollowRepository
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Followers(ctx context.Context, profileID string, page repositories.Page) ([]models.Profile, int64, error) {
	args := m.Called(ctx, profileID, page)
	return args.Get(0).([]models.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockFollowRepository) Following(ctx context.Context, profileID string, page repositories.Page) ([]models.Profile, int64, error) {
	args := m.Called(ctx, profileID, page)
	return args.Get(0).([]models.Profile), args.Get(1).(int64), args.Error(2)
}

// MockReportRepository is a mock implementation of repositories.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) CreateReport(ctx context.Context, report *models.Report) error {
	return m.Called(ctx, report).Error(0)
}

func (m *MockReportRepository) CreateInquiry(ctx context.Context, inquiry *models.UserInquiry) error {
	return m.Called(ctx, inquiry).Error(0)
}

// MockGroupRepository is a mock implementation of repositories.GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) EnsureGroup(ctx context.Context, name string, permissions []models.Permission) (*models.Group, error) {
	args := m.Called(ctx, name, permissions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

// MockNotifier records handed-off notifications.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n notify.Notification) error {
	return m.Called(ctx, n).Error(0)
}

package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
	"socialapp/internal/models"
	"socialapp/internal/notify"
	"socialapp/internal/otp"
	"socialapp/internal/repositories"
	"socialapp/internal/services"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(users *MockUserRepository, profiles *MockProfileRepository, notifier *MockNotifier) *services.AuthService {
	return services.NewAuthService(
		users,
		profiles,
		otp.NewManager(otp.DefaultConfig),
		notifier,
		services.TokenConfig{Secret: testJWTSecret, AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour},
		logger.NewNop(),
	)
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func TestAuthService_Register(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockProfileRepository)
	notifier := new(MockNotifier)
	authService := newAuthService(users, profiles, notifier)
	ctx := context.Background()

	in := services.RegisterInput{
		Username:    "testuser",
		Email:       "test@example.com",
		Password:    "password123",
		FirstName:   "Test",
		LastName:    "User",
		PhoneNumber: "5551234567",
		BirthDate:   time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
	}

	users.On("GetByUsername", ctx, in.Username).Return(nil, notFound("user")).Once()
	users.On("GetByEmail", ctx, in.Email).Return(nil, notFound("user")).Once()
	users.On("CreateWithProfile", ctx, mock.AnythingOfType("*models.User"), mock.AnythingOfType("*models.Profile")).Return(nil).Once()
	notifier.On("Notify", ctx, mock.MatchedBy(func(n notify.Notification) bool {
		return n.Kind == notify.KindActivation && n.Email == in.Email && len(n.Code) == 6
	})).Return(nil).Once()

	profile, err := authService.Register(ctx, in)
	require.NoError(t, err)
	assert.False(t, profile.IsActive)
	assert.NotEmpty(t, profile.UniqueID)
	assert.NotEmpty(t, profile.OTP)
	assert.NotNil(t, profile.OTPExpiry)
	assert.Equal(t, otp.DefaultConfig.MaxTry, profile.MaxOTPTry)

	created := users.Calls[2].Arguments.Get(1).(*models.User)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte(in.Password)))
	users.AssertExpectations(t)
	notifier.AssertExpectations(t)

	// Test username already taken
	users.On("GetByUsername", ctx, in.Username).Return(&models.User{ID: "1"}, nil).Once()
	_, err = authService.Register(ctx, in)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "username 'testuser' already taken")

	// Test email already registered
	users.On("GetByUsername", ctx, in.Username).Return(nil, notFound("user")).Once()
	users.On("GetByEmail", ctx, in.Email).Return(&models.User{ID: "1"}, nil).Once()
	_, err = authService.Register(ctx, in)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "email 'test@example.com' already registered")

	// A unique index violation from the transaction is a conflict too
	users.On("GetByUsername", ctx, in.Username).Return(nil, notFound("user")).Once()
	users.On("GetByEmail", ctx, in.Email).Return(nil, notFound("user")).Once()
	users.On("CreateWithProfile", ctx, mock.Anything, mock.Anything).Return(fmt.Errorf("failed to create profile: %w", repositories.ErrDuplicate)).Once()
	_, err = authService.Register(ctx, in)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	users.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockProfileRepository)
	authService := newAuthService(users, profiles, new(MockNotifier))
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		IsActive: true,
	}
	profile := &models.Profile{ID: "profile-1", UserID: user.ID, Username: user.Username}

	// Test successful login
	users.On("GetByUsername", ctx, user.Username).Return(user, nil).Once()
	profiles.On("Get", ctx, repositories.ProfileByUserID(user.ID)).Return(profile, nil).Once()
	users.On("TouchLastLogin", ctx, user.ID).Return(nil).Once()

	tokens, got, err := authService.Login(ctx, "testuser", "password123")
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	parsedToken, err := jwt.Parse(tokens.Access, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])
	assert.Equal(t, "access", claims["token_type"])
	users.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	users.On("GetByUsername", ctx, user.Username).Return(user, nil).Once()
	_, _, err = authService.Login(ctx, "testuser", "wrongpassword")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	// Test unknown user
	users.On("GetByUsername", ctx, "nonexistentuser").Return(nil, notFound("user")).Once()
	_, _, err = authService.Login(ctx, "nonexistentuser", "password123")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	// Test inactive user
	inactive := *user
	inactive.IsActive = false
	users.On("GetByUsername", ctx, "sleepy").Return(&inactive, nil).Once()
	_, _, err = authService.Login(ctx, "sleepy", "password123")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	users.AssertExpectations(t)
}

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return s
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockUserRepository), new(MockProfileRepository), new(MockNotifier))

	validTokenString := signTestToken(t, jwt.MapClaims{
		"user_id":    "user-123",
		"username":   "testuser",
		"token_type": "access",
		"exp":        jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])

	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	expiredTokenString := signTestToken(t, jwt.MapClaims{
		"user_id":    "user-123",
		"token_type": "access",
		"exp":        jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)

	refreshTokenString := signTestToken(t, jwt.MapClaims{
		"user_id":    "user-123",
		"token_type": "refresh",
		"exp":        jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	_, err = authService.ValidateToken(refreshTokenString)
	assert.Error(t, err, "refresh tokens are not accepted as access tokens")
}

func TestAuthService_Refresh(t *testing.T) {
	users := new(MockUserRepository)
	authService := newAuthService(users, new(MockProfileRepository), new(MockNotifier))
	ctx := context.Background()

	refresh := signTestToken(t, jwt.MapClaims{
		"user_id":    "user-123",
		"token_type": "refresh",
		"exp":        jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	users.On("GetByID", ctx, "user-123").Return(&models.User{ID: "user-123", Username: "testuser"}, nil).Once()

	access, err := authService.Refresh(ctx, refresh)
	require.NoError(t, err)
	claims, err := authService.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])

	_, err = authService.Refresh(ctx, access)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "access tokens cannot be refreshed")
	users.AssertExpectations(t)
}

func TestAuthService_PasswordReset(t *testing.T) {
	users := new(MockUserRepository)
	profiles := new(MockProfileRepository)
	notifier := new(MockNotifier)
	authService := newAuthService(users, profiles, notifier)
	ctx := context.Background()

	profile := &models.Profile{ID: "p1", UserID: "u1", Email: "a@example.com", IsActive: true, MaxOTPTry: 3}
	var sent notify.Notification
	profiles.On("UpdateLocked", ctx, repositories.ProfileByEmail("a@example.com")).Return(profile, nil)
	notifier.On("Notify", ctx, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(notify.Notification)
	}).Return(nil).Once()

	require.NoError(t, authService.ForgotPassword(ctx, "a@example.com"))
	assert.Equal(t, notify.KindPasswordReset, sent.Kind)
	assert.Equal(t, profile.OTP, sent.Code)

	err := authService.ResetPassword(ctx, "a@example.com", "000000x", "newpassword")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = authService.ResetPassword(ctx, "a@example.com", sent.Code, "short")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	users.On("SetPassword", ctx, "u1", mock.AnythingOfType("string")).Return(nil).Once()
	require.NoError(t, authService.ResetPassword(ctx, "a@example.com", sent.Code, "newpassword"))
	assert.Nil(t, profile.OTPExpiry)

	// the code is spent
	err = authService.ResetPassword(ctx, "a@example.com", sent.Code, "newpassword")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	users.AssertExpectations(t)

	profiles.On("UpdateLocked", ctx, repositories.ProfileByEmail("nobody@example.com")).Return(nil, notFound("profile")).Once()
	err = authService.ForgotPassword(ctx, "nobody@example.com")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

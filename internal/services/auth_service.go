package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/segmentio/ksuid"
	"golang.org/x/crypto/bcrypt"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
	"socialapp/internal/models"
	"socialapp/internal/notify"
	"socialapp/internal/otp"
	"socialapp/internal/repositories"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// MinPasswordLength applies to signup and password reset.
const MinPasswordLength = 8

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	otp         *otp.Manager
	notifier    notify.Notifier
	log         *logger.Logger

	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// TokenConfig holds the JWT settings.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	otpManager *otp.Manager,
	notifier notify.Notifier,
	tokens TokenConfig,
	log *logger.Logger,
) *AuthService {
	if tokens.AccessTTL <= 0 {
		tokens.AccessTTL = time.Hour
	}
	if tokens.RefreshTTL <= 0 {
		tokens.RefreshTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		otp:         otpManager,
		notifier:    notifier,
		log:         log.With("service", "AuthService"),
		jwtSecret:   []byte(tokens.Secret),
		accessTTL:   tokens.AccessTTL,
		refreshTTL:  tokens.RefreshTTL,
	}
}

// RegisterInput is a validated signup request.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Bio         string
	BirthDate   time.Time
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Register creates an inactive user and its profile in one transaction and
// sends the activation code.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil && existing != nil {
		return nil, apperr.Conflict("username '%s' already taken", in.Username)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, apperr.Conflict("email '%s' already registered", in.Email)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashedPassword),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	profile := &models.Profile{
		Username:    in.Username,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Bio:         in.Bio,
		BirthDate:   in.BirthDate,
		UniqueID:    ksuid.New().String(),
		MaxOTPTry:   s.otp.MaxTry(),
	}
	code, _, err := s.otp.Issue(profile)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, fromRepo(err, "user")
	}

	s.send(ctx, notify.Notification{Kind: notify.KindActivation, Email: profile.Email, Phone: profile.PhoneNumber, Code: code})
	s.log.Info("user registered", "user_id", user.ID, "profile_id", profile.ID)
	return profile, nil
}

// Login authenticates a user and returns an access and a refresh token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, *models.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, fromRepo(err, "user")
	}
	if !user.IsActive {
		return nil, nil, apperr.Forbidden("user is not active, please verify your account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, apperr.Unauthorized("invalid credentials")
	}

	profile, err := s.profileRepo.Get(ctx, repositories.ProfileByUserID(user.ID))
	if err != nil {
		return nil, nil, fromRepo(err, "profile")
	}

	access, err := s.sign(user, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.sign(user, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, profile, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", apperr.Unauthorized("invalid refresh token")
	}
	userID, _ := claims["user_id"].(string)
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", apperr.Unauthorized("invalid refresh token")
	}
	return s.sign(user, tokenTypeAccess, s.accessTTL)
}

// ValidateToken parses and validates an access token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	return s.parse(tokenString, tokenTypeAccess)
}

// IsSuperuser reports the superuser flag of the user.
func (s *AuthService) IsSuperuser(ctx context.Context, userID string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, fromRepo(err, "user")
	}
	return user.IsSuperuser, nil
}

// ForgotPassword issues a code to the profile registered with email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var code string
	profile, err := s.profileRepo.UpdateLocked(ctx, repositories.ProfileByEmail(email), func(p *models.Profile) error {
		var err error
		code, _, err = s.otp.Issue(p)
		return err
	})
	if err != nil {
		return fromRepo(err, "user with this email")
	}
	s.send(ctx, notify.Notification{Kind: notify.KindPasswordReset, Email: profile.Email, Code: code})
	return nil
}

// ResetPassword sets a new password when code matches the unexpired code
// issued by ForgotPassword. The code is spent before the password changes.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, password string) error {
	if len(password) < MinPasswordLength {
		return apperr.ValidationFields("invalid password", map[string]string{
			"password": fmt.Sprintf("must be at least %d characters", MinPasswordLength),
		})
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	profile, err := s.profileRepo.UpdateLocked(ctx, repositories.ProfileByEmail(email), func(p *models.Profile) error {
		if !s.otp.CheckReset(p, code) {
			return apperr.Validation("invalid or expired otp")
		}
		s.otp.ClearExpiry(p)
		return nil
	})
	if err != nil {
		return fromRepo(err, "user with this email")
	}
	if err := s.userRepo.SetPassword(ctx, profile.UserID, string(hashedPassword)); err != nil {
		return fromRepo(err, "user")
	}
	s.log.Info("password reset", "user_id", profile.UserID)
	return nil
}

func (s *AuthService) sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    user.ID,
		"username":   user.Username,
		"token_type": tokenType,
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

func (s *AuthService) parse(tokenString, tokenType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims["token_type"] != tokenType {
		return nil, fmt.Errorf("invalid token: expected %s token", tokenType)
	}
	return claims, nil
}

// send hands n to the notifier without failing the request.
func (s *AuthService) send(ctx context.Context, n notify.Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Error("failed to hand off notification", "kind", n.Kind, "email", n.Email, "error", err)
	}
}

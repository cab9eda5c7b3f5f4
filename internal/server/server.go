// Package server assembles the HTTP application: repositories, services,
// handlers and the middleware chain.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"socialapp/internal/config"
	"socialapp/internal/handlers"
	"socialapp/internal/logger"
	"socialapp/internal/middleware"
	"socialapp/internal/notify"
	"socialapp/internal/otp"
	"socialapp/internal/ratelimit"
	"socialapp/internal/repositories"
	"socialapp/internal/services"
)

// Deps are the process-level resources the application is built from.
type Deps struct {
	Config   config.Config
	DB       *gorm.DB
	Log      *logger.Logger
	Notifier notify.Notifier
	Limiter  ratelimit.Store
	// OTPOptions customize the code manager, e.g. a fixed generator in tests.
	OTPOptions []otp.Option
}

// New builds the fiber application with every route registered.
func New(deps Deps) *fiber.App {
	cfg := deps.Config
	log := deps.Log

	userRepo := repositories.NewGORMUserRepository(deps.DB)
	profileRepo := repositories.NewGORMProfileRepository(deps.DB)
	commentRepo := repositories.NewGORMCommentRepository(deps.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(deps.DB)
	followRepo := repositories.NewGORMFollowRepository(deps.DB)
	reportRepo := repositories.NewGORMReportRepository(deps.DB)

	otpManager := otp.NewManager(otp.Config{
		MaxTry:  cfg.OTP.MaxTry,
		TTL:     cfg.OTP.TTL,
		Lockout: cfg.OTP.Lockout,
	}, deps.OTPOptions...)

	authService := services.NewAuthService(userRepo, profileRepo, otpManager, deps.Notifier, services.TokenConfig{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, log)
	otpService := services.NewOTPService(profileRepo, otpManager, deps.Notifier, log)
	profileService := services.NewProfileService(profileRepo, log)
	ratingService := services.NewRatingService(commentRepo, profileRepo, categoryRepo, cfg.RequiredCategoryIDs, log)
	commentService := services.NewCommentService(commentRepo, profileRepo, log)
	followService := services.NewFollowService(followRepo, profileRepo, log)
	reportService := services.NewReportService(reportRepo, profileRepo, commentRepo, otpManager, log)

	authHandler := handlers.NewAuthHandler(authService)
	otpHandler := handlers.NewOTPHandler(otpService)
	profileHandler := handlers.NewProfileHandler(profileService, ratingService, commentService, followService)
	commentHandler := handlers.NewCommentHandler(ratingService, commentService)
	reportHandler := handlers.NewReportHandler(reportService)

	app := fiber.New(fiber.Config{
		AppName:      "socialapp",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.RestrictAPIRoot(cfg.AllowedAPIIPs, log))
	app.Use(middleware.RateLimit(deps.Limiter, authService, cfg.RateLimit, log))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	authRequired := middleware.AuthRequired(authService, log)

	// Authentication routes, public except is_superuser
	authHandler.RegisterRoutes(app, authRequired)

	api := app.Group("/api")
	api.Get("/", apiIndex)

	// OTP routes are open to callers that cannot log in yet
	otpHandler.RegisterRoutes(api.Group("/otp", middleware.OTPRestrict(authService)))

	// Protected routes (require an access token)
	protected := api.Group("", authRequired)
	profileHandler.RegisterRoutes(protected)
	commentHandler.RegisterRoutes(protected)
	reportHandler.RegisterRoutes(protected)

	return app
}

func apiIndex(c *fiber.Ctx) error {
	base := c.BaseURL() + "/api/"
	return c.JSON(fiber.Map{
		"user-profiles":   base + "user-profiles/",
		"profiles":        base + "profiles/",
		"comments":        base + "comments/",
		"latest-comments": base + "latest-comments",
		"report":          base + "report",
		"inquiries":       base + "inquiries",
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"socialapp/internal/config"
	"socialapp/internal/database"
	"socialapp/internal/logger"
	"socialapp/internal/notify"
	"socialapp/internal/ratelimit"
	"socialapp/internal/repositories"
	"socialapp/internal/server"
	"socialapp/internal/services"
	"socialapp/pkg/rabbitmq"
)

func main() {
	if err := newRootCommand(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env bundles what every command needs.
type env struct {
	cfg config.Config
	log *logger.Logger
	db  *gorm.DB
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "socialapp",
		Short:         "Profile rating backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var embeddedWorker bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), v, func(ctx context.Context, e *env) error {
				return runServe(ctx, e, embeddedWorker)
			})
		},
	}
	serve.Flags().BoolVar(&embeddedWorker, "embedded-worker", true, "also consume the notification queue in this process")

	worker := &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued notifications by email and SMS",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), v, runWorker)
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), v, func(_ context.Context, e *env) error {
				if err := database.Migrate(e.db); err != nil {
					return err
				}
				e.log.Info("database migrated")
				return nil
			})
		},
	}

	provision := &cobra.Command{
		Use:   "provision",
		Short: "Seed the rating categories and the customer support group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), v, func(ctx context.Context, e *env) error {
				svc := services.NewProvisioningService(
					repositories.NewGORMCategoryRepository(e.db),
					repositories.NewGORMGroupRepository(e.db),
					e.log,
				)
				return svc.Provision(ctx)
			})
		},
	}

	root.AddCommand(serve, worker, migrate, provision)
	return root
}

// withEnv loads the configuration, the logger and the database, runs fn
// and releases everything afterwards. fn's context is cancelled on SIGINT
// or SIGTERM.
func withEnv(parent context.Context, v *viper.Viper, fn func(ctx context.Context, e *env) error) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return fn(ctx, &env{cfg: cfg, log: log, db: db})
}

func runServe(ctx context.Context, e *env, embeddedWorker bool) error {
	var (
		notifier notify.Notifier = notify.NewLogNotifier(e.log)
		mqClient *rabbitmq.Client
	)
	if e.cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: e.cfg.RabbitMQURL}, e.log)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer client.Close()
		mqClient = client
		notifier = notify.NewQueueNotifier(client)
	} else {
		e.log.Warn("RABBITMQ_URL not set, notifications are only logged")
	}

	var limiter ratelimit.Store
	if e.cfg.RedisAddr != "" {
		store, err := ratelimit.NewRedisStore(ctx, e.cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer store.Close()
		limiter = store
	} else {
		e.log.Warn("REDIS_ADDR not set, rate limits are kept per process")
		limiter = ratelimit.NewMemoryStore(nil)
	}

	app := server.New(server.Deps{
		Config:   e.cfg,
		DB:       e.db,
		Log:      e.log,
		Notifier: notifier,
		Limiter:  limiter,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.log.Info("starting server", "port", e.cfg.AppPort)
		return app.Listen(e.cfg.AppPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		e.log.Info("shutting down server")
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	if mqClient != nil && embeddedWorker {
		dispatcher, err := newDispatcher(e)
		if err != nil {
			e.log.Warn("embedded worker disabled", "error", err)
		} else {
			g.Go(func() error {
				return consume(gctx, mqClient, dispatcher)
			})
		}
	}
	return g.Wait()
}

func runWorker(ctx context.Context, e *env) error {
	if e.cfg.RabbitMQURL == "" {
		return errors.New("worker needs RABBITMQ_URL")
	}
	dispatcher, err := newDispatcher(e)
	if err != nil {
		return err
	}
	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: e.cfg.RabbitMQURL}, e.log)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
	}
	defer client.Close()
	return consume(ctx, client, dispatcher)
}

func newDispatcher(e *env) (*notify.Dispatcher, error) {
	mailer, err := notify.NewSendGridMailer(notify.SendGridConfig{
		APIKey:    e.cfg.SendGridAPIKey,
		FromEmail: e.cfg.SendGridFromEmail,
	})
	if err != nil {
		return nil, err
	}
	var sms notify.SMSSender
	if e.cfg.SMSAPIKey != "" {
		if sms, err = notify.NewTwoFactorSMS(e.cfg.SMSAPIKey, ""); err != nil {
			return nil, err
		}
	}
	return notify.NewDispatcher(mailer, sms, e.log), nil
}

func consume(ctx context.Context, client *rabbitmq.Client, dispatcher *notify.Dispatcher) error {
	return client.Consume(ctx, func(msg amqp.Delivery) error {
		return dispatcher.Handle(ctx, msg.Body)
	}, notify.Retryable)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smartwound/smartwound/internal/config"
	"github.com/smartwound/smartwound/internal/domain/admin"
	"github.com/smartwound/smartwound/internal/domain/clinic"
	"github.com/smartwound/smartwound/internal/domain/forum"
	"github.com/smartwound/smartwound/internal/domain/identity"
	"github.com/smartwound/smartwound/internal/domain/smart"
	"github.com/smartwound/smartwound/internal/domain/support"
	"github.com/smartwound/smartwound/internal/domain/vision"
	"github.com/smartwound/smartwound/internal/domain/wound"
	"github.com/smartwound/smartwound/internal/platform/auth"
	"github.com/smartwound/smartwound/internal/platform/blobstore"
	"github.com/smartwound/smartwound/internal/platform/db"
	"github.com/smartwound/smartwound/internal/platform/joblock"
	"github.com/smartwound/smartwound/internal/platform/middleware"
	"github.com/smartwound/smartwound/internal/platform/notification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smartwound-server",
		Short: "Smart Wound API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Smart Wound API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Token issuer
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	// Mail delivery. Without an SMTP relay configured, mail is captured
	// in memory so development flows still complete.
	var sender notification.EmailSender
	if cfg.SMTPHost != "" {
		smtpSender, err := notification.NewSMTPSender(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure SMTP sender")
		}
		sender = smtpSender
	} else {
		logger.Warn().Msg("SMTP not configured, capturing mail in memory")
		sender = notification.NewMemorySender()
	}
	mailer := notification.NewMailer(sender, logger)

	// Photo storage
	var store blobstore.Store
	if cfg.MinioEndpoint != "" {
		store, err = blobstore.NewMinioStore(ctx, blobstore.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			PublicURL: cfg.MinioPublicURL,
			UseSSL:    cfg.IsProduction(),
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to object storage")
		}
	} else {
		logger.Warn().Msg("MinIO not configured, storing uploads in memory")
		store = blobstore.NewMemoryStore(cfg.BaseURL)
	}

	// Sweep lock. Redis serializes sweeps across replicas; a single
	// instance gets by with a process-local lock.
	var locker joblock.Locker
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid redis url")
		}
		locker = joblock.NewRedisLocker(redis.NewClient(opts), joblock.DefaultLockTTL)
	} else {
		locker = joblock.NewProcessLocker()
	}

	// Repositories
	userRepo := identity.NewPgRepository(pool)
	woundRepo := wound.NewPgRepository(pool)
	reminderRepo := smart.NewPgReminderRepository(pool)
	escalationRepo := smart.NewPgEscalationRepository(pool)
	woundSource := smart.NewPgWoundSource(pool)
	clinicRepo := clinic.NewPgRepository(pool)
	forumRepo := forum.NewPgRepository(pool)
	statsRepo := admin.NewPgStatsRepository(pool)

	// Services
	identitySvc := identity.NewService(userRepo, issuer, mailer, cfg.BaseURL, logger)
	woundSvc := wound.NewService(woundRepo, logger)
	smartSvc := smart.NewService(reminderRepo, escalationRepo, logger)
	engine := smart.NewEngine(woundSource, reminderRepo, escalationRepo, locker, mailer, logger)
	clinicSvc := clinic.NewService(clinicRepo, logger)
	forumSvc := forum.NewService(forumRepo, logger)

	// Handlers
	identityHandler := identity.NewHandler(identitySvc)
	woundHandler := wound.NewHandler(woundSvc)
	smartHandler := smart.NewHandler(smartSvc, engine, issuer, cfg.JobRunnerToken)
	visionHandler := vision.NewHandler(vision.NewGoogleClient(cfg.VisionEndpoint, cfg.VisionAPIKey), logger)
	clinicHandler := clinic.NewHandler(clinicSvc)
	forumHandler := forum.NewHandler(forumSvc)
	adminHandler := admin.NewHandler(statsRepo, identitySvc, forumRepo, woundSvc)
	uploadHandler := blobstore.NewHandler(store)
	supportHandler := support.NewHandler(mailer, cfg.SupportEmail, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Job-Token"},
	}))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// API group
	api := e.Group("/api")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Public routes
	identityHandler.RegisterPublicRoutes(api)
	clinicHandler.RegisterPublicRoutes(api)
	forumHandler.RegisterPublicRoutes(api)
	smartHandler.RegisterJobRoutes(api)

	// Authenticated routes
	authed := e.Group("/api", middleware.RateLimit(rateLimitCfg), auth.Middleware(issuer))
	identityHandler.RegisterRoutes(authed)
	woundHandler.RegisterRoutes(authed)
	smartHandler.RegisterRoutes(authed)
	visionHandler.RegisterRoutes(authed)
	clinicHandler.RegisterRoutes(authed)
	forumHandler.RegisterRoutes(authed)
	adminHandler.RegisterRoutes(authed)
	uploadHandler.RegisterRoutes(authed)
	supportHandler.RegisterRoutes(authed)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

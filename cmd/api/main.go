package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gaddamnithinreddy/templatestore/internal/audit"
	"github.com/gaddamnithinreddy/templatestore/internal/auth"
	"github.com/gaddamnithinreddy/templatestore/internal/config"
	"github.com/gaddamnithinreddy/templatestore/internal/email"
	"github.com/gaddamnithinreddy/templatestore/internal/handler"
	"github.com/gaddamnithinreddy/templatestore/internal/metrics"
	"github.com/gaddamnithinreddy/templatestore/internal/middleware"
	"github.com/gaddamnithinreddy/templatestore/internal/model"
	"github.com/gaddamnithinreddy/templatestore/internal/payment"
	"github.com/gaddamnithinreddy/templatestore/internal/repository"
	"github.com/gaddamnithinreddy/templatestore/internal/service"
	"github.com/gaddamnithinreddy/templatestore/internal/validator"
	"github.com/gaddamnithinreddy/templatestore/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry, then apply migrations
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Template Store",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 60 * time.Second,  // Downloads stream file bytes
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())
	app.Use(middleware.RequestMeta())

	// Initialize validator
	validate := validator.New()

	// Repositories
	couponRepo := repository.NewCouponRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	// Audit recorder and settings provider
	recorder := audit.NewRecorder(auditRepo)
	settingsService := service.NewSettingsService(settingsRepo, cfg.Auth.AdminEmails)

	// Admin credentials
	authManager, err := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth manager")
	}

	// Payment gateways
	razorpay := payment.NewRazorpay(payment.RazorpayConfig{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		BaseURL:   cfg.Razorpay.BaseURL,
	})
	cashfree := payment.NewCashfree(payment.CashfreeConfig{
		ClientID:     cfg.Cashfree.ClientID,
		ClientSecret: cfg.Cashfree.ClientSecret,
		BaseURL:      cfg.Cashfree.BaseURL,
		APIVersion:   cfg.Cashfree.APIVersion,
	})

	// Outbound email; the store runs without it when SMTP is not configured
	var mailer service.Mailer
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPMailer(email.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			FromAddress: cfg.SMTP.FromAddress,
			FromName:    cfg.SMTP.FromName,
		})
	} else {
		log.Warn().Msg("SMTP not configured, download emails disabled")
	}

	// Services
	couponService := service.NewCouponService(couponRepo)
	templateService := service.NewTemplateService(templateRepo)
	downloadService := service.NewDownloadService(tokenRepo, templateRepo,
		&http.Client{Timeout: 30 * time.Second},
		time.Duration(cfg.Download.TokenTTLHours)*time.Hour)
	orderService := service.NewOrderService(pool, orderRepo, templateRepo,
		couponService, downloadService, mailer, recorder, service.OrderServiceConfig{
			Gateways: map[string]payment.Gateway{
				model.GatewayRazorpay: razorpay,
				model.GatewayCashfree: cashfree,
			},
			RazorpayVerify: razorpay,
			CashfreeVerify: cashfree,
			RazorpayKeyID:  cfg.Razorpay.KeyID,
			BaseURL:        cfg.Server.BaseURL,
		})

	// Handlers
	healthHandler := handler.NewHealthHandler(pool)
	downloadHandler := handler.NewDownloadHandler(downloadService)
	couponHandler := handler.NewCouponHandler(couponService, validate)
	templateHandler := handler.NewTemplateHandler(templateService)
	orderHandler := handler.NewOrderHandler(orderService, validate)
	adminHandler := handler.NewAdminHandler(couponService, settingsService, auditRepo, recorder, validate)

	// Maintenance mode blocks storefront routes, not downloads or admin
	app.Use(middleware.Maintenance(settingsService))

	publicLimit := middleware.RateLimit(cfg.Rate.PerSecond, cfg.Rate.Burst)

	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", metrics.Handler())

	app.Get("/downloads/:token", publicLimit, downloadHandler.Download)

	app.Get("/api/templates", templateHandler.List)
	app.Get("/api/templates/:id", templateHandler.Get)
	app.Post("/api/coupons/verify", publicLimit, couponHandler.Verify)
	app.Post("/api/orders", orderHandler.Create)
	app.Post("/api/payments/verify", orderHandler.VerifyPayment)
	app.Post("/api/payments/cashfree/webhook", orderHandler.CashfreeWebhook)

	// Admin console, behind the three-step gate
	admin := app.Group("/api/admin",
		middleware.AdminGate(authManager, settingsService, recorder))
	admin.Post("/coupons", adminHandler.CreateCoupon)
	admin.Get("/coupons", adminHandler.ListCoupons)
	admin.Delete("/coupons/:code", adminHandler.DeleteCoupon)
	admin.Get("/settings", adminHandler.GetSettings)
	admin.Put("/settings", adminHandler.UpdateSettings)
	admin.Get("/audit-logs", adminHandler.ListAuditLogs)
	admin.Get("/security-events", adminHandler.ListSecurityEvents)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

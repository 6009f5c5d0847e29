package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/config"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/database"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/logging"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/routes"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/services"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if missing := cfg.Missing(); len(missing) > 0 {
		slog.Error("required environment variables are not set", "missing", strings.Join(missing, ","))
		os.Exit(1)
	}

	cipher, err := services.NewTokenCipher(cfg.TokenEncryptionKey)
	if err != nil {
		slog.Error("token cipher init failed", "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Stores
	sessionStore := store.NewSessionStore(database.DB)
	draftStore := store.NewDraftStore(database.DB)
	submissionStore := store.NewSubmissionStore(database.DB)

	// External services
	identity := services.NewGoogleIdentity(services.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		UserInfoURL:  cfg.GoogleUserInfoURL,
		Timeout:      cfg.HTTPTimeout,
	})

	broker := services.NewCheckoutBroker()
	gateway := services.NewRazorpayGateway(services.GatewayConfig{
		APIURL:    cfg.PaymentAPIURL,
		ScriptURL: cfg.RazorpayScriptURL,
		Timeout:   cfg.HTTPTimeout,
	}, broker)

	initCtx, cancelInit := context.WithTimeout(context.Background(), cfg.GatewayInitTimeout)
	if err := gateway.Init(initCtx); err != nil {
		slog.Error("payment gateway not ready", "action", "gateway_init", "error", err)
	} else {
		slog.Info("payment gateway ready", "script", cfg.RazorpayScriptURL)
	}
	cancelInit()

	appender := services.NewSheetsAppender(services.SheetsConfig{
		SheetID:  cfg.SheetID,
		Range:    cfg.SheetRange,
		Endpoint: cfg.SheetsEndpoint,
		Timeout:  cfg.HTTPTimeout,
	})

	// Services
	sessionService := services.NewSessionService(sessionStore, identity, cipher, cfg)
	workflow := services.NewWorkflow(
		services.WorkflowConfig{Amount: cfg.PaymentAmount, Currency: cfg.PaymentCurrency},
		gateway,
		appender,
		services.NewStoreJournal(submissionStore),
	)
	formService := services.NewFormService(sessionService, draftStore, submissionStore, workflow, broker, services.CheckoutConfig{
		KeyID:       cfg.RazorpayKeyID,
		Name:        cfg.CheckoutName,
		Description: cfg.CheckoutDesc,
		ThemeColor:  cfg.CheckoutThemeColor,
		Timeout:     cfg.CheckoutTimeout,
	})

	// Handlers
	authHandler := handlers.NewAuthHandler(sessionService)
	formHandler := handlers.NewFormHandler(formService)
	adminHandler := handlers.NewAdminHandler(formService)
	healthHandler := handlers.NewHealthHandler(database.Ping, gateway)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    64 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, sessionService, authHandler, formHandler, adminHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...", "pending_checkouts", broker.Pending())

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

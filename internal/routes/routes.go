package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/config"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	sessions middleware.ProfileSource,
	authHandler *handlers.AuthHandler,
	formHandler *handlers.FormHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Google consent: stricter 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Get("/google/login", authHandler.LoginURL)
	auth.Get("/google/callback", authHandler.Callback)

	// Session-scoped routes. Middleware is attached per group so public
	// routes above stay unauthenticated.
	protected := []fiber.Handler{middleware.JWTProtected(cfg), middleware.SessionScope(sessions)}

	session := api.Group("/session", protected...)
	session.Get("/", authHandler.Session)
	session.Post("/signout", authHandler.SignOut)

	form := api.Group("/form", protected...)
	form.Get("/", formHandler.Get)
	form.Put("/", formHandler.Update)
	form.Post("/reset", formHandler.Reset)

	// One order per submit: 5 req/min per IP
	form.Post("/submit", limiter.New(limiter.Config{
		Max:               5,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), formHandler.Submit)

	api.Post("/checkout/:order_id/complete", append(protected, formHandler.Complete)...)
	api.Get("/submissions/:id", append(protected, formHandler.SubmissionStatus)...)

	admin := api.Group("/admin", middleware.OptionalJWT(cfg), middleware.AdminRequired(cfg, sessions))
	admin.Get("/submissions", adminHandler.ListSubmissions)
}

package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/presta-go-api/internal/config"
	"github.com/noah-isme/presta-go-api/internal/handler"
	"github.com/noah-isme/presta-go-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	SubmissionHandler   *handler.SubmissionHandler
	VerificationHandler *handler.VerificationHandler
	LeaderboardHandler  *handler.LeaderboardHandler
	ActivityTypeHandler *handler.ActivityTypeHandler
	AdminHandler        *handler.AdminHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.SubmissionHandler != nil {
		submissions := app.Group("/api/v2/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)

		if deps.VerificationHandler != nil {
			deps.VerificationHandler.Register(submissions)
		}

		student := app.Group("/api/v2/student", jwtMiddleware)
		student.Get("/dashboard", middleware.WithAuth(deps.SubmissionHandler.Dashboard, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	}

	if deps.LeaderboardHandler != nil {
		leaderboard := app.Group("/api/v2/leaderboard", jwtMiddleware)
		deps.LeaderboardHandler.Register(leaderboard)
	}

	if deps.ActivityTypeHandler != nil {
		types := app.Group("/api/v2/activity-types", jwtMiddleware)
		deps.ActivityTypeHandler.Register(types)
	}

	if deps.AdminHandler != nil {
		admin := app.Group("/api/v2/admin", jwtMiddleware)
		deps.AdminHandler.Register(admin)
	}
}

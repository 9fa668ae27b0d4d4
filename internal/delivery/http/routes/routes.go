package routes

import (
	"jobmarket/internal/delivery/http/handler"
	"jobmarket/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

// Registry wires handlers onto the fiber app. The /api group sits behind the
// API-key check and the per-client rate limit; /health stays open so load
// balancers can probe without credentials.
type Registry struct {
	health    *handler.HealthHandler
	jobs      *handler.JobsHandler
	auth      *middleware.AuthMiddleware
	rateLimit *middleware.RateLimitMiddleware
}

func NewRegistry(health *handler.HealthHandler, jobs *handler.JobsHandler, auth *middleware.AuthMiddleware, rateLimit *middleware.RateLimitMiddleware) *Registry {
	return &Registry{health: health, jobs: jobs, auth: auth, rateLimit: rateLimit}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api", r.auth.Middleware(), r.rateLimit.Middleware())
	r.jobs.RegisterRoutes(api.Group("/jobs"))
}

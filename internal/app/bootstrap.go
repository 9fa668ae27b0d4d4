package app

import (
	"fmt"
	"strings"

	"jobmarket/internal/config"
	"jobmarket/internal/delivery/http/handler"
	"jobmarket/internal/delivery/http/middleware"
	"jobmarket/internal/delivery/http/routes"
	"jobmarket/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap builds the container, wires middleware and routes onto a fresh
// fiber app and starts the websocket hub. The returned cleanup closes the
// container's connections.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	container, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{
		AppName: container.Config.App.AppName,
	})

	f.Use(cors.New())
	f.Use(middleware.NewAccessLogMiddleware(container.Logger).Middleware())
	f.Use(middleware.NewErrorMiddleware().Middleware())

	auth := middleware.NewAuthMiddleware(container.Config.Upstream.APIKey)
	rateLimit := middleware.NewRateLimitMiddleware(container.Cache, container.Config.RateLimit, container.Logger)

	health := handler.NewHealthHandler(container.DB, container.Cache)
	jobs := handler.NewJobsHandler(container.Search)
	routes.NewRegistry(health, jobs, auth, rateLimit).Register(f)

	go container.Hub.Run()
	ws.NewHandler(container.Hub, container.Logger).RegisterRoutes(f)

	cleanup := func() error { return container.Close() }
	return &App{Fiber: f, Container: container}, cleanup, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

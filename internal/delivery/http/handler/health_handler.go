package handler

import (
	"context"
	"time"

	"jobmarket/internal/database"
	"jobmarket/internal/infrastructure/cache"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	db    database.DB
	cache *cache.Redis
}

func NewHealthHandler(db database.DB, cache *cache.Redis) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/health", h.HandleHealth)
}

func (h *HealthHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
		status = fiber.StatusServiceUnavailable
	} else if err := h.db.Ping(ctx); err != nil {
		dbStatus = "down"
		status = fiber.StatusServiceUnavailable
	}

	cacheStatus := "up"
	if err := h.cache.Ping(ctx); err != nil {
		// Cache is optional; a down cache degrades but does not fail health.
		cacheStatus = "down"
	}

	return c.Status(status).JSON(fiber.Map{
		"success":  status == fiber.StatusOK,
		"message":  "Job Market API is running",
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}

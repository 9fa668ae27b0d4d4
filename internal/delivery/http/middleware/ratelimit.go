package middleware

import (
	"context"
	"log"
	"time"

	"jobmarket/internal/config"
	"jobmarket/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// WindowCounter is a fixed-window counter, implemented by the Redis cache
// adapter. Errors mean the backend is unavailable and the limiter lets the
// request through.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitMiddleware throttles per client IP, 100 requests per 15 minutes
// by default.
type RateLimitMiddleware struct {
	counter WindowCounter
	window  time.Duration
	max     int64
	logger  *log.Logger
}

func NewRateLimitMiddleware(counter WindowCounter, cfg config.RateLimitConfig, logger *log.Logger) *RateLimitMiddleware {
	window := cfg.Window
	if window <= 0 {
		window = 15 * time.Minute
	}
	max := int64(cfg.Max)
	if max <= 0 {
		max = 100
	}
	return &RateLimitMiddleware{counter: counter, window: window, max: max, logger: logger}
}

func (m *RateLimitMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m == nil || m.counter == nil {
			return c.Next()
		}

		key := "ratelimit:" + c.IP()
		n, err := m.counter.IncrWindow(c.Context(), key, m.window)
		if err != nil {
			return c.Next()
		}
		if n > m.max {
			if m.logger != nil {
				m.logger.Printf("[RateLimit] Rejected ip=%s count=%d window=%s", c.IP(), n, m.window)
			}
			return NewAppError(fiber.StatusTooManyRequests, response.MessageTooManyRequests,
				"Rate limit exceeded, retry after the current window", nil)
		}
		return c.Next()
	}
}

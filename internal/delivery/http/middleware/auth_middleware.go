package middleware

import (
	"crypto/subtle"
	"strings"

	"jobmarket/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

const apiKeyHeader = "X-RapidAPI-Key"

// AuthMiddleware guards every /api route with the same RapidAPI key the
// backend uses against the upstream provider.
type AuthMiddleware struct {
	apiKey string
}

func NewAuthMiddleware(apiKey string) *AuthMiddleware {
	return &AuthMiddleware{apiKey: strings.TrimSpace(apiKey)}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(apiKeyHeader))
		if key == "" || m.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			return NewAppError(fiber.StatusUnauthorized, response.MessageUnauthorized,
				"Please provide a valid RapidAPI key in the X-RapidAPI-Key header", nil)
		}
		return c.Next()
	}
}

package response

import "github.com/gofiber/fiber/v3"

// Envelope is the error shape every API failure uses: a stable error string
// plus an optional human-readable details payload. Success payloads carry
// their own success:true field per endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

const (
	MessageBadRequest          = "Bad request"
	MessageUnauthorized        = "Unauthorized - Invalid API Key"
	MessageNotFound            = "Not found"
	MessageTooManyRequests     = "Too many requests, please try again later"
	MessageUpstreamFailed      = "Failed to fetch jobs from external API"
	MessageNetworkError        = "Network error while fetching jobs"
	MessageInternalServerError = "Internal server error"
)

func Error(c fiber.Ctx, status int, message string, details any) error {
	if status < 100 || status > 599 {
		status = fiber.StatusInternalServerError
	}
	if message == "" {
		message = defaultMessageForStatus(status)
	}
	return c.Status(status).JSON(Envelope{Success: false, Error: message, Details: details})
}

func defaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusUnauthorized:
		return MessageUnauthorized
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusTooManyRequests:
		return MessageTooManyRequests
	default:
		if status >= 500 {
			return MessageInternalServerError
		}
		return MessageBadRequest
	}
}

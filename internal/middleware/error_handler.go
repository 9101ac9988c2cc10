package middleware

import (
	"errors"

	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the global error handler. Returns the standard error format.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case IsListingError(err):
		code = StatusForKind(err)
		message = err.Error()
	default:
		log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("unhandled error")
	}
	return response.Error(c, message, code, nil)
}

// IsListingError reports whether err carries one of the negotiation error kinds.
func IsListingError(err error) bool {
	return errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrQuantityExceeded) ||
		errors.Is(err, domain.ErrInvalidAmount)
}

// StatusForKind maps a listing error kind to its HTTP status.
func StatusForKind(kind error) int {
	switch {
	case errors.Is(kind, domain.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(kind, domain.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(kind, domain.ErrQuantityExceeded):
		return fiber.StatusUnprocessableEntity
	case errors.Is(kind, domain.ErrInvalidAmount):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

package middleware

import (
	"strings"

	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds CORS configuration (suffix + dev password).
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
}

// CORS allows origins ending with AllowedSuffix, requests carrying the
// dev-password header, and preflights from localhost. Requests without an
// Origin pass untouched. Credentials are allowed.
func CORS(cfg CORSConfig) fiber.Handler {
	suffix := strings.ToLower(cfg.AllowedSuffix)
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}
		preflight := c.Method() == fiber.MethodOptions
		allowed := (suffix != "" && strings.HasSuffix(strings.ToLower(origin), suffix)) ||
			(cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword) ||
			(preflight && isLocalOrigin(origin))
		if !allowed {
			return response.Forbidden(c, "Not allowed by CORS")
		}
		setCORSHeaders(c, origin)
		if preflight {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set("Access-Control-Allow-Origin", origin)
	c.Set("Access-Control-Allow-Credentials", "true")
	c.Set("Access-Control-Allow-Headers", "Content-Type, dev-password, X-Trace-Id")
	c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Set("Access-Control-Expose-Headers", "X-Trace-Id")
	c.Set("Vary", "Origin")
}

package middleware

import (
	"errors"

	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

var ErrNoActor = errors.New("Unauthorized")

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := CurrentActor(c); err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireAdmin lets through only session users flagged is_admin.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, ok := GetUser(c).(map[string]interface{})
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if isAdmin, _ := m["is_admin"].(bool); !isAdmin {
			return response.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentActor turns the session user into the identity the listing core works with.
func CurrentActor(c *fiber.Ctx) (domain.Actor, error) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return domain.Actor{}, ErrNoActor
	}
	raw, _ := m["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return domain.Actor{}, ErrNoActor
	}
	userType, _ := m["user_type"].(string)
	return domain.Actor{ID: id, Role: domain.ParseRole(userType)}, nil
}

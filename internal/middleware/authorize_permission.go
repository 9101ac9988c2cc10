package middleware

import (
	"scrapmarket-backend/internal/pkg/constants"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission checks the session user's user_type against PermissionUserTypes.
// Unconfigured permission -> 500 "Permission configuration error"; type not allowed -> 403.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		userType := getUserType(user)
		if userType == "" {
			return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
		}
		types, ok := constants.PermissionUserTypes[permission]
		if !ok || len(types) == 0 {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedUserType(permission, userType) {
			return response.Forbidden(c, "User is Forbidden from performing this action")
		}
		return c.Next()
	}
}

// RequireCollector gates collector-only routes.
func RequireCollector() fiber.Handler {
	return AuthorizePermission(constants.MakeOffer)
}

func getUserType(user interface{}) string {
	m, ok := user.(map[string]interface{})
	if !ok {
		return ""
	}
	t, _ := m["user_type"].(string)
	return t
}

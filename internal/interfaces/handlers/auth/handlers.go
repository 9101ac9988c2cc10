package auth

import (
	"errors"

	authsvc "scrapmarket-backend/internal/application/auth"
	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// LoginRequest body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /api/v1/auth/login: authenticate, create session, track it under user_sessions:<id>, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Internal(c)
	}
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Email and password are required")
	}
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	user, err := h.UserFinder.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, authsvc.ErrInvalidEmail), errors.Is(err, authsvc.ErrIncorrectPassword):
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			log.Error().Err(err).Msg("login lookup failed")
			return response.Internal(c)
		}
	}

	shape := authsvc.ShapeFor(user)
	err = middleware.StartSession(c, h.Rdb, h.Config, middleware.SessionUser{
		UserID:   shape.UserID,
		Username: shape.Username,
		Email:    shape.Email,
		UserType: shape.UserType,
		IsAdmin:  shape.IsAdmin,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", shape.UserID).Msg("session start failed")
		return response.Internal(c)
	}
	log.Info().Str("user_id", shape.UserID).Str("user_type", shape.UserType).Msg("user logged in")
	return response.Success(c, "Login successful", fiber.Map{"user": shape}, nil)
}

// Me GET /api/v1/auth/me: return current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		log.Debug().Str("path", c.Path()).
			Bool("session_id_present", middleware.GetSessionID(c) != "").
			Msg("auth/me: not authenticated")
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout: drop the session from Redis and clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()

	if m, ok := middleware.GetUser(c).(map[string]interface{}); ok && sessionID != "" {
		if userID, _ := m["user_id"].(string); userID != "" {
			_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+userID, sessionID).Err()
		}
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)
	c.Locals("session_id", "")

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}

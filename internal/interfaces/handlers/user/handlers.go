package user

import (
	"errors"

	usersvc "scrapmarket-backend/internal/application/user"
	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/models"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds the user service and session config for registration (session + cookie).
type Handlers struct {
	Service *usersvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// RegisterRequest body.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

// Register POST /api/v1/users/register: create the account, log it in, return 201 with data.user.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Missing required fields")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Missing required fields")
	}

	u, err := h.Service.CreateUser(c.UserContext(), usersvc.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		UserType: req.UserType,
	})
	if err != nil {
		return mapCreateError(c, err)
	}

	err = middleware.StartSession(c, h.Rdb, h.Config, middleware.SessionUser{
		UserID:   u.UserID.String(),
		Username: u.Username,
		Email:    u.Email,
		UserType: u.UserType,
		IsAdmin:  u.IsAdmin,
	})
	if err != nil {
		// The account exists; the client can still log in.
		log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("session start after register failed")
	}

	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": safeUser(u)}, nil)
}

// Me GET /api/v1/users/me: the stored profile of the session user, including earnings.
func (h *Handlers) Me(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.ViewUser(c.UserContext(), actor.ID.String())
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return response.NotFound(c, err.Error())
		}
		log.Error().Err(err).Msg("view user failed")
		return response.Internal(c)
	}
	return response.Success(c, "User found", fiber.Map{"user": safeUser(u)}, nil)
}

func safeUser(u *models.User) fiber.Map {
	return fiber.Map{
		"user_id":        u.UserID.String(),
		"username":       u.Username,
		"email":          u.Email,
		"user_type":      u.UserType,
		"is_admin":       u.IsAdmin,
		"total_earnings": u.TotalEarnings.StringFixed(2),
		"createdAt":      u.CreatedAt,
		"updatedAt":      u.UpdatedAt,
	}
}

func mapCreateError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, usersvc.ErrInvalidUsername),
		errors.Is(err, usersvc.ErrInvalidEmail),
		errors.Is(err, usersvc.ErrInvalidPassword),
		errors.Is(err, usersvc.ErrInvalidUserType):
		status = fiber.StatusBadRequest
	case errors.Is(err, usersvc.ErrEmailRegistered), errors.Is(err, usersvc.ErrUsernameRegistered):
		status = fiber.StatusConflict
	default:
		log.Error().Err(err).Msg("create user failed")
		return response.Error(c, "Internal Server Error", status, nil)
	}
	return response.Error(c, err.Error(), status, nil)
}

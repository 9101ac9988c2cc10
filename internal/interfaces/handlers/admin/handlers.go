package admin

import (
	adminsvc "scrapmarket-backend/internal/application/admin"
	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *adminsvc.Service
}

// GET /api/v1/admin/dashboard
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	d, err := h.Service.Dashboard(c.UserContext())
	if err != nil {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("admin dashboard failed")
		return response.Internal(c)
	}
	return response.Success(c, "Dashboard fetched successfully", fiber.Map{"dashboard": d}, nil)
}

package bootstrap

import (
	"net/http"

	"scrapmarket-backend/internal/config"
	"scrapmarket-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// New creates the Fiber app for Vercel serverless (api handler imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}

// Handler is New adapted to net/http.
func Handler() (http.Handler, error) {
	app, err := New()
	if err != nil {
		return nil, err
	}
	return router.Handler(app), nil
}

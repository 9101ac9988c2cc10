package router

import (
	"net/http"

	adminsvc "scrapmarket-backend/internal/application/admin"
	authsvc "scrapmarket-backend/internal/application/auth"
	healthsvc "scrapmarket-backend/internal/application/health"
	listsvc "scrapmarket-backend/internal/application/listings"
	usersvc "scrapmarket-backend/internal/application/user"
	"scrapmarket-backend/internal/config"
	"scrapmarket-backend/internal/domain"
	"scrapmarket-backend/internal/infrastructure/database"
	"scrapmarket-backend/internal/infrastructure/lock"
	adminhandler "scrapmarket-backend/internal/interfaces/handlers/admin"
	authhandler "scrapmarket-backend/internal/interfaces/handlers/auth"
	healthhandler "scrapmarket-backend/internal/interfaces/handlers/health"
	listhandler "scrapmarket-backend/internal/interfaces/handlers/listings"
	userhandler "scrapmarket-backend/internal/interfaces/handlers/user"
	"scrapmarket-backend/internal/middleware"
	"scrapmarket-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		hh.DB = healthsvc.GormPinger{DB: db}
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{UserFinder: userFinder, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db == nil {
		return app, db, rdb, nil
	}

	// Users
	us := &usersvc.Service{DB: db}
	uh := &userhandler.Handlers{Service: us, Rdb: rdb, Config: sessionCfg}
	app.Post("/api/v1/users/register", uh.Register)
	app.Get("/api/v1/users/me", middleware.RequireAuth(), uh.Me)

	// Listings
	lockOpts := lock.DefaultOptions()
	lockOpts.Expiry = cfg.ListingLockTTL
	ls := &listsvc.Service{
		DB:             db,
		Locker:         lock.NewRedisLocker(rdb, lockOpts),
		Ledger:         listsvc.GormLedger{},
		Clock:          domain.SystemClock{},
		CommissionRate: cfg.CommissionRate,
	}
	lh := &listhandler.Handlers{Service: ls}
	lg := app.Group("/api/v1/listings")
	lg.Get("/", lh.ListAvailable)
	lg.Get("/all", lh.ListAll)
	lg.Get("/mine", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewOwnListings), lh.ListMine)
	lg.Get("/collected", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewCollected), lh.ListCollected)
	lg.Post("/", middleware.RequireAuth(), middleware.AuthorizePermission(constants.CreateListing), lh.CreateListing)
	lg.Get("/:id", lh.GetListing)
	lg.Put("/:id", middleware.RequireAuth(), middleware.AuthorizePermission(constants.EditListing), lh.EditListing)
	lg.Delete("/:id", middleware.RequireAuth(), middleware.AuthorizePermission(constants.DeleteListing), lh.DeleteListing)
	lg.Get("/:id/events", middleware.RequireAuth(), lh.ListEvents)
	lg.Post("/:id/offer", middleware.RequireAuth(), middleware.RequireCollector(), lh.MakeOffer)
	lg.Post("/:id/accept", middleware.RequireAuth(), middleware.AuthorizePermission(constants.DecideOffer), lh.AcceptOffer)
	lg.Post("/:id/reject", middleware.RequireAuth(), middleware.AuthorizePermission(constants.DecideOffer), lh.RejectOffer)

	// Admin
	adh := &adminhandler.Handlers{Service: &adminsvc.Service{DB: db}}
	app.Get("/api/v1/admin/dashboard", middleware.RequireAuth(), middleware.RequireAdmin(), adh.Dashboard)

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

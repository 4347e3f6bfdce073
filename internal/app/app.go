package app

import (
	"naviport-backend/internal/auth"
	"naviport-backend/internal/config"
	"naviport-backend/internal/constants"
	"naviport-backend/internal/database"
	"naviport-backend/internal/demandevents"
	"naviport-backend/internal/demands"
	"naviport-backend/internal/health"
	"naviport-backend/internal/middleware"
	"naviport-backend/internal/nominations"
	"naviport-backend/internal/offers"
	"naviport-backend/internal/pdas"
	"naviport-backend/internal/reviews"
	"naviport-backend/internal/ships"
	"naviport-backend/internal/uploads"
	"naviport-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. The returned DB and Redis client are shared with the caller
// for startup pings and shutdown.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLSuffix,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health", healthHandlers.Check)

	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{
		DB:         db,
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	if db != nil && rdb != nil {
		RegisterRoutes(app, db, rdb, cfg)
	}

	return app, db, rdb, nil
}

// RegisterRoutes mounts every authenticated module. Split out so tests can
// mount the full route table on an in-memory DB and miniredis.
func RegisterRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	shipService := &ships.Service{DB: db}
	shipHandlers := &ships.Handlers{Service: shipService}
	shipGroup := app.Group("/api/v1/ships", middleware.RequireAuth())
	shipGroup.Post("/", middleware.AuthorizePermission(constants.ManageShips), shipHandlers.Create)
	shipGroup.Get("/", middleware.AuthorizePermission(constants.ManageShips), shipHandlers.List)
	shipGroup.Get("/:id", middleware.AuthorizePermission(constants.ManageShips), shipHandlers.Get)
	shipGroup.Put("/:id", middleware.AuthorizePermission(constants.ManageShips), shipHandlers.Update)
	shipGroup.Delete("/:id", middleware.AuthorizePermission(constants.ManageShips), shipHandlers.Delete)

	demandService := &demands.Service{DB: db}
	demandHandlers := &demands.Handlers{Service: demandService}
	demandGroup := app.Group("/api/v1/demands", middleware.RequireAuth())
	demandGroup.Post("/", middleware.AuthorizePermission(constants.CreateDemand), demandHandlers.Create)
	demandGroup.Get("/", demandHandlers.List)
	demandGroup.Get("/archive", middleware.AuthorizePermission(constants.ManageDemand), demandHandlers.ListArchive)
	demandGroup.Post("/sweep", middleware.AuthorizePermission(constants.ApproveDemand), demandHandlers.Sweep)
	demandGroup.Get("/:id", demandHandlers.Get)
	demandGroup.Put("/:id", middleware.AuthorizePermission(constants.ManageDemand), demandHandlers.Update)
	demandGroup.Delete("/:id", middleware.AuthorizePermission(constants.ManageDemand), demandHandlers.Delete)
	demandGroup.Post("/:id/cancel", middleware.AuthorizePermission(constants.ManageDemand), demandHandlers.Cancel)
	demandGroup.Post("/:id/approve", middleware.AuthorizePermission(constants.ApproveDemand), demandHandlers.Approve)
	demandGroup.Post("/:id/restore", middleware.AuthorizePermission(constants.ManageDemand), demandHandlers.Restore)

	offerService := &offers.Service{DB: db}
	offerHandlers := &offers.Handlers{Service: offerService}
	offerGroup := app.Group("/api/v1/offers", middleware.RequireAuth())
	offerGroup.Post("/", middleware.AuthorizePermission(constants.SubmitOffer), offerHandlers.Submit)
	offerGroup.Get("/", middleware.AuthorizePermission(constants.SubmitOffer), offerHandlers.ListMine)
	offerGroup.Post("/:id/accept", middleware.AuthorizePermission(constants.AcceptOffer), offerHandlers.Accept)
	demandGroup.Get("/:id/offers", offerHandlers.ListByDemand)

	eventService := &demandevents.Service{DB: db}
	eventHandlers := &demandevents.Handlers{Service: eventService}
	demandGroup.Get("/:id/events", eventHandlers.ListByDemand)

	nominationService := &nominations.Service{DB: db}
	nominationHandlers := &nominations.Handlers{Service: nominationService}
	nominationGroup := app.Group("/api/v1/nominations", middleware.RequireAuth())
	nominationGroup.Post("/", middleware.AuthorizePermission(constants.SendNomination), nominationHandlers.Create)
	nominationGroup.Get("/", nominationHandlers.List)
	nominationGroup.Post("/:id/read", middleware.AuthorizePermission(constants.ReadNomination), nominationHandlers.MarkRead)

	reviewService := &reviews.Service{DB: db}
	reviewHandlers := &reviews.Handlers{Service: reviewService}
	reviewGroup := app.Group("/api/v1/reviews", middleware.RequireAuth())
	reviewGroup.Post("/", middleware.AuthorizePermission(constants.SubmitReview), reviewHandlers.Upsert)
	reviewGroup.Get("/", middleware.AuthorizePermission(constants.SubmitReview), reviewHandlers.ListMine)
	app.Get("/api/v1/agencies/:id/rating", middleware.RequireAuth(), reviewHandlers.AgencySummary)

	pdaService := &pdas.Service{DB: db}
	pdaHandlers := &pdas.Handlers{Service: pdaService}
	pdaGroup := app.Group("/api/v1/pdas", middleware.RequireAuth())
	pdaGroup.Post("/", middleware.AuthorizePermission(constants.SubmitPda), pdaHandlers.Create)
	pdaGroup.Get("/", pdaHandlers.List)
	pdaGroup.Get("/:id", pdaHandlers.Get)
	pdaGroup.Post("/:id/resubmit", middleware.AuthorizePermission(constants.SubmitPda), pdaHandlers.Resubmit)
	pdaGroup.Post("/:id/review", middleware.AuthorizePermission(constants.ReviewPda), pdaHandlers.StartReview)
	pdaGroup.Post("/:id/approve", middleware.AuthorizePermission(constants.ReviewPda), pdaHandlers.Approve)
	pdaGroup.Post("/:id/return", middleware.AuthorizePermission(constants.ReviewPda), pdaHandlers.Return)
	pdaGroup.Put("/:id/target-price", middleware.AuthorizePermission(constants.ReviewPda), pdaHandlers.SetTargetPrice)
	pdaGroup.Post("/:id/items", middleware.AuthorizePermission(constants.ManagePdaItems), pdaHandlers.AddItem)
	pdaGroup.Put("/items/:itemId", middleware.AuthorizePermission(constants.ManagePdaItems), pdaHandlers.UpdateItem)
	pdaGroup.Delete("/items/:itemId", middleware.AuthorizePermission(constants.ManagePdaItems), pdaHandlers.DeleteItem)

	supabaseClient := &uploads.HTTPClient{
		BaseURL:   cfg.SupabaseURL,
		SecretKey: cfg.SupabaseSecretKey,
	}
	uploadService := &uploads.Service{
		Client:      supabaseClient,
		SupabaseURL: cfg.SupabaseURL,
	}
	uploadHandlers := &uploads.Handlers{Service: uploadService}
	uploadGroup := app.Group("/api/v1/uploads", middleware.RequireAuth(), middleware.AuthorizePermission(constants.RequestUpload))
	uploadGroup.Post("/offer-file", uploadHandlers.UploadOfferFile)
	uploadGroup.Post("/pda-file", uploadHandlers.UploadPdaFile)

	userService := &users.Service{DB: db}
	userHandlers := &users.Handlers{Service: userService}
	userGroup := app.Group("/api/v1/users", middleware.RequireAuth())
	userGroup.Get("/me", userHandlers.GetProfile)
	userGroup.Put("/me", userHandlers.UpdateProfile)
	userGroup.Get("/me/ports", middleware.AuthorizePermission(constants.RegisterPorts), userHandlers.ListPorts)
	userGroup.Put("/me/ports", middleware.AuthorizePermission(constants.RegisterPorts), userHandlers.ReplacePorts)
}

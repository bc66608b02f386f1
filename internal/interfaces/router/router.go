package router

import (
	"net/http"

	authsvc "wastecert-backend/internal/application/auth"
	certsvc "wastecert-backend/internal/application/certificates"
	"wastecert-backend/internal/application/codegen"
	"wastecert-backend/internal/application/consolidation"
	"wastecert-backend/internal/application/eligibility"
	healthsvc "wastecert-backend/internal/application/health"
	"wastecert-backend/internal/application/validator"
	"wastecert-backend/internal/config"
	"wastecert-backend/internal/infrastructure/database"
	authhandler "wastecert-backend/internal/interfaces/handlers/auth"
	certhandler "wastecert-backend/internal/interfaces/handlers/certificates"
	healthhandler "wastecert-backend/internal/interfaces/handlers/health"
	validatorhandler "wastecert-backend/internal/interfaces/handlers/validator"
	"wastecert-backend/internal/middleware"
	"wastecert-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const publicPrefix = "/api/v1/public/"

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
		PublicPrefix:  publicPrefix,
	}))

	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.DBAutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				return nil, nil, nil, err
			}
			log.Info().Msg("schema migrated")
		}
		status := &healthsvc.GormStatus{DB: db}
		hh.DB = status
		hh.Certs = status
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
		CookieDomain:      cfg.CookieDomain,
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db == nil {
		log.Warn().Msg("no database configured, certificate routes disabled")
		return app, nil, rdb, nil
	}

	store := &certsvc.GormStore{DB: db}
	ch := &certhandler.Handlers{
		Selector:  &eligibility.Selector{DB: db},
		Previewer: &consolidation.Service{DB: db},
		Issuer: &certsvc.Issuer{
			Store:           store,
			Codes:           &codegen.Generator{},
			MaxCodeAttempts: cfg.CodeMaxAttempts,
		},
		Revoker: &certsvc.Revoker{Store: store},
		Service: &certsvc.Service{DB: db},
	}
	cg := app.Group("/api/v1/certificates", middleware.RequireAuth())
	cg.Get("/eligible", middleware.AuthorizePermission(constants.ViewCollections), ch.Eligible)
	cg.Post("/preview", middleware.AuthorizePermission(constants.IssueCertificate), ch.Preview)
	cg.Post("/issue", middleware.AuthorizePermission(constants.IssueCertificate), ch.Issue)
	cg.Post("/revoke", middleware.AuthorizePermission(constants.RevokeCertificate), ch.Revoke)
	cg.Get("/view-entity", middleware.AuthorizePermission(constants.ViewCertificates), ch.ViewEntity)
	cg.Post("/view-one", middleware.AuthorizePermission(constants.ViewCertificates), ch.ViewOne)
	cg.Get("/logs/:certificate_id", middleware.AuthorizePermission(constants.ViewCertificates), ch.Logs)

	vh := &validatorhandler.Handlers{
		Validator: &validator.Validator{DB: db, BaseURL: cfg.PublicValidationBaseURL},
	}
	app.Get(publicPrefix+"certificates/:code", middleware.RateLimit(rdb, middleware.RateLimitConfig{
		Name:   "validator",
		Limit:  cfg.ValidatorRateLimit,
		Window: cfg.ValidatorRateWindow,
	}), vh.Lookup)

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

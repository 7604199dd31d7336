package main

import (
	"errors"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ManuelReschke/AdEngine/app/controllers"
	"github.com/ManuelReschke/AdEngine/app/repository"
	apiv1 "github.com/ManuelReschke/AdEngine/internal/api/v1"
	"github.com/ManuelReschke/AdEngine/internal/pkg/billing"
	"github.com/ManuelReschke/AdEngine/internal/pkg/cache"
	"github.com/ManuelReschke/AdEngine/internal/pkg/config"
	"github.com/ManuelReschke/AdEngine/internal/pkg/copywriter"
	"github.com/ManuelReschke/AdEngine/internal/pkg/database"
	"github.com/ManuelReschke/AdEngine/internal/pkg/entitlements"
	"github.com/ManuelReschke/AdEngine/internal/pkg/env"
	"github.com/ManuelReschke/AdEngine/internal/pkg/generation"
	"github.com/ManuelReschke/AdEngine/internal/pkg/metrics"
	"github.com/ManuelReschke/AdEngine/internal/pkg/middleware"
	"github.com/ManuelReschke/AdEngine/internal/pkg/quota"
	"github.com/ManuelReschke/AdEngine/internal/pkg/router"
	"github.com/ManuelReschke/AdEngine/internal/pkg/scraper"
	"github.com/ManuelReschke/AdEngine/internal/pkg/security"
)

func main() {
	env.SetupEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := database.SetupDatabase(cfg.DatabaseURL, cfg.IsDev())
	if err != nil {
		log.Fatalf("database unavailable: %v", err)
	}
	cacheClient := cache.SetupCache(cfg)

	app, err := NewApplication(cfg, db, cacheClient)
	if err != nil {
		log.Fatal(err)
	}

	log.Fatal(app.Listen(cfg.ListenAddr()))
}

// NewApplication wires every component from the config. cacheClient may be nil.
func NewApplication(cfg config.Config, db *gorm.DB, cacheClient *redis.Client) (*fiber.App, error) {
	if cfg.GeminiAPIKey == "" {
		fiberlog.Warn("[App] GEMINI_API_KEY is not set, generation requests will fail")
	}
	if cfg.StripeWebhookSecret == "" {
		fiberlog.Warn("[App] STRIPE_WEBHOOK_SECRET is not set, all webhooks will be rejected")
	}

	m := metrics.NewMetrics()
	repos := repository.NewFactory(db).GetRepositories()

	tokens, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenExpires)
	if err != nil {
		return nil, err
	}

	ledger := quota.NewLedger(repos.Usage, entitlements.NewLimits(cfg.FreeTierLimit, cfg.ProTierLimit))
	workflow := generation.NewWorkflow(
		scraper.NewClient(cfg.ScraperUserAgent, cfg.ScraperTimeout),
		copywriter.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.GeminiTimeout),
		ledger,
		repos.Usage,
		m,
	)

	billingService := billing.NewService(
		billing.NewRepositoryFrom(repos.User, repos.WebhookEvent),
		billing.NewStripeVerifier(cfg.StripeWebhookSecret),
		m,
	)
	checkout := billing.NewCheckout(billing.NewStripeGateway(cfg.StripeSecretKey), repos.User, cfg.StripeProPriceID, cfg.FrontendURL)
	if !checkout.Enabled() {
		fiberlog.Info("[App] Stripe checkout disabled (STRIPE_SECRET_KEY or STRIPE_PRO_PRICE_ID missing)")
	}

	mainController := controllers.NewMainController(db, cacheClient, cfg.Version)
	server := apiv1.NewAPIServer(
		mainController,
		controllers.NewAuthController(repos.User, tokens),
		controllers.NewUserController(ledger),
		controllers.NewGenerateController(workflow),
		controllers.NewBillingController(billingService, checkout),
	)

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AdEngine " + cfg.Version,
		BodyLimit:    1 << 20,
		ErrorHandler: errorHandler,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// ROUTER
	router.InstallRouter(app, router.Dependencies{
		Config:       cfg,
		Server:       server,
		Authenticate: middleware.RequireBearerAuth(tokens, repos.User),
		Root:         mainController.HandleRoot,
		Metrics:      m,
		Cache:        cacheClient,
		DocsFile:     docsFile(),
	})

	return app, nil
}

// errorHandler renders errors that escape a handler in the API's JSON shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		fiberlog.Errorf("[App] Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   errorCode(code),
		"message": message,
	})
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case fiber.StatusBadRequest:
		return "bad_request"
	}
	if status >= 500 {
		return "internal_server_error"
	}
	return "error"
}

// docsFile finds public/docs/v1/openapi.yml from the project root or cmd/adengine.
func docsFile() string {
	for _, base := range []string{"./", "../../", "../../../"} {
		path := base + "public/docs/v1/openapi.yml"
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	fiberlog.Warn("[App] openapi.yml not found, /docs is disabled")
	return ""
}

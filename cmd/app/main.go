package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dabeez/storefront-gateway/internal/auth"
	"github.com/dabeez/storefront-gateway/internal/cart"
	"github.com/dabeez/storefront-gateway/internal/catalog"
	"github.com/dabeez/storefront-gateway/internal/checkout"
	"github.com/dabeez/storefront-gateway/internal/config"
	"github.com/dabeez/storefront-gateway/internal/dashboard"
	"github.com/dabeez/storefront-gateway/internal/orderapi"
	"github.com/dabeez/storefront-gateway/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := mustLogger()
	defer func() { _ = logger.Sync() }()

	// amounts go over the wire as JSON numbers, matching the order API
	decimal.MarshalJSONWithoutQuotes = true

	app := fiber.New()
	setupCORS(app)
	app.Use(session.Middleware())

	orderClient := orderapi.NewClient(cfg.OrderAPIBase, cfg.RequestTimeout, logger)
	verifier := auth.NewVerifier(cfg.OrderAPIBase, cfg.RequestTimeout, logger)

	cartStore := cart.NewStore()
	cartHandler := cart.NewHandler(cartStore)
	cartHandler.RegisterRoutes(app)

	checkoutService := checkout.NewService(cartStore, orderClient, cfg.SettlementDelay, logger)
	checkoutHandler := checkout.NewHandler(checkoutService)
	checkoutHandler.RegisterRoutes(app)

	synchronizer := dashboard.NewSynchronizer(orderClient, dashboard.Config{
		PollInterval:    cfg.PollInterval,
		FreshnessWindow: cfg.FreshnessWindow,
		NotificationTTL: cfg.NotificationTTL,
	}, logger)
	controller := dashboard.NewController(synchronizer, logger)

	tokens := auth.NewTokenStore()
	gate := auth.NewGate(tokens, verifier, controller)
	authHandler := auth.NewHandler(tokens, verifier, controller)
	authHandler.RegisterRoutes(app)

	catalogHandler := catalog.NewHandler(cfg.OrderAPIBase, cfg.RequestTimeout, logger)
	catalogHandler.RegisterPublicRoutes(app)
	catalogHandler.RegisterAdminRoutes(app, gate.RequireAdmin())

	dashboardHandler := dashboard.NewHandler(synchronizer)
	dashboardHandler.RegisterProtectedRoutes(app, gate.RequireAdmin())

	logger.Info("storefront gateway listening",
		zap.String("addr", cfg.Addr),
		zap.String("orderAPI", cfg.OrderAPIBase),
	)
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func mustLogger() *zap.Logger {
	if os.Getenv("APP_ENV") == "development" {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return l
	}
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

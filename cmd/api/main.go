package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vitrinehub/vitrine-backend/api/routes"
	"github.com/vitrinehub/vitrine-backend/internal/cart"
	"github.com/vitrinehub/vitrine-backend/internal/catalog"
	"github.com/vitrinehub/vitrine-backend/internal/checkout"
	"github.com/vitrinehub/vitrine-backend/internal/customers"
	"github.com/vitrinehub/vitrine-backend/internal/engine"
	"github.com/vitrinehub/vitrine-backend/internal/features"
	"github.com/vitrinehub/vitrine-backend/internal/gate"
	"github.com/vitrinehub/vitrine-backend/internal/savedcart"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/db"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/metrics"
	"github.com/vitrinehub/vitrine-backend/pkg/migrate"
	"github.com/vitrinehub/vitrine-backend/pkg/orderhub"
	"github.com/vitrinehub/vitrine-backend/pkg/redis"
	"github.com/vitrinehub/vitrine-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var gcsClient *gcs.Client
	if cfg.GCS.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, receipts disabled")
	}

	orderhubClient, err := orderhub.NewClient(cfg.OrderHub)
	if err != nil {
		logg.Error(context.Background(), "failed to create orderhub client", err)
		os.Exit(1)
	}

	catalogRepo, err := catalog.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog repository", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	featureService := features.NewService(cfg.Trial)

	cartService, err := cart.NewService(redisClient, cfg.Session.CartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	gateService, err := gate.NewService(redisClient, orderhubClient, featureService, cfg.Session.GateTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gate service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(redisClient, cfg.Session.CustomerTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	savedCartService, err := savedcart.NewService(redisClient, cartService, featureService, cfg.SavedCart.CodeLength, cfg.SavedCart.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create saved-cart service", err)
		os.Exit(1)
	}

	var uploader checkout.ReceiptUploader
	if gcsClient != nil {
		uploader = gcsClient
	}

	checkoutService, err := checkout.NewService(
		redisClient,
		cartService,
		orderhubClient,
		uploader,
		customerService,
		featureService,
		cfg.GCS.ReceiptPrefix,
		cfg.Session.OrderSuccessTTL,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	eng, err := engine.New(engine.Deps{
		Catalog:     catalogService,
		Carts:       cartService,
		Gate:        gateService,
		Checkout:    checkoutService,
		SavedCart:   savedCartService,
		Customers:   customerService,
		Guards:      redisClient,
		PageSize:    cfg.Catalog.PageSize,
		InFlightTTL: cfg.Session.InFlightTTL,
		Metrics:     engineMetrics,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to assemble storefront engine", err)
		os.Exit(1)
	}

	var gcsPinger gcs.Pinger
	if gcsClient != nil {
		gcsPinger = gcsClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gcsPinger, registry, eng),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/karavanrugs/karavan-backend/api/routes"
	"github.com/karavanrugs/karavan-backend/internal/cart"
	"github.com/karavanrugs/karavan-backend/internal/categories"
	"github.com/karavanrugs/karavan-backend/internal/discounts"
	"github.com/karavanrugs/karavan-backend/internal/orders"
	"github.com/karavanrugs/karavan-backend/internal/pricing"
	"github.com/karavanrugs/karavan-backend/internal/products"
	"github.com/karavanrugs/karavan-backend/internal/traders"
	"github.com/karavanrugs/karavan-backend/internal/users"
	"github.com/karavanrugs/karavan-backend/pkg/config"
	"github.com/karavanrugs/karavan-backend/pkg/db"
	"github.com/karavanrugs/karavan-backend/pkg/env"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
	"github.com/karavanrugs/karavan-backend/pkg/metrics"
	"github.com/karavanrugs/karavan-backend/pkg/migrate"
	"github.com/karavanrugs/karavan-backend/pkg/outbox"
	"github.com/karavanrugs/karavan-backend/pkg/razorpay"
	"github.com/karavanrugs/karavan-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	razorpayClient, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap razorpay", err)
		os.Exit(1)
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	usersService, err := users.NewService(users.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password)
	if err != nil {
		exitOnWiring(logg, "users service", err)
	}
	tradersService, err := traders.NewService(traders.NewRepository(dbClient.DB()), dbClient, outboxSvc, cfg.Password)
	if err != nil {
		exitOnWiring(logg, "traders service", err)
	}
	productsRepo := products.NewRepository(dbClient.DB())
	productsService, err := products.NewService(productsRepo, dbClient)
	if err != nil {
		exitOnWiring(logg, "products service", err)
	}
	categoriesService, err := categories.NewService(categories.NewRepository(dbClient.DB()))
	if err != nil {
		exitOnWiring(logg, "categories service", err)
	}
	discountsService, err := discounts.NewService(discounts.NewRepository(dbClient.DB()), dbClient, outboxSvc)
	if err != nil {
		exitOnWiring(logg, "discounts service", err)
	}
	pricingService, err := pricing.NewService(discountsService)
	if err != nil {
		exitOnWiring(logg, "pricing service", err)
	}
	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), productsRepo, pricingService)
	if err != nil {
		exitOnWiring(logg, "cart service", err)
	}
	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, outboxSvc, razorpayClient)
	if err != nil {
		exitOnWiring(logg, "orders service", err)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:           cfg,
		Logger:           logg,
		DBPinger:         dbClient,
		RedisPinger:      redisClient,
		Limiter:          redisClient,
		IdempotencyStore: redisClient,
		HTTPMetrics:      httpMetrics,
		MetricsGatherer:  registry,
		Users:            usersService,
		Traders:          tradersService,
		Products:         productsService,
		Categories:       categoriesService,
		Discounts:        discountsService,
		Cart:             cartService,
		Orders:           ordersService,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func exitOnWiring(logg *logger.Logger, component string, err error) {
	logg.Error(context.Background(), "failed to create "+component, err)
	os.Exit(1)
}

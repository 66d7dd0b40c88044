package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mateovergara/sitesupply-backend/api/routes"
	"github.com/mateovergara/sitesupply-backend/internal/access"
	"github.com/mateovergara/sitesupply-backend/internal/invoices"
	"github.com/mateovergara/sitesupply-backend/internal/messages"
	"github.com/mateovergara/sitesupply-backend/internal/negotiation"
	"github.com/mateovergara/sitesupply-backend/internal/orders"
	"github.com/mateovergara/sitesupply-backend/internal/projects"
	"github.com/mateovergara/sitesupply-backend/pkg/config"
	"github.com/mateovergara/sitesupply-backend/pkg/db"
	"github.com/mateovergara/sitesupply-backend/pkg/logger"
	"github.com/mateovergara/sitesupply-backend/pkg/metrics"
	"github.com/mateovergara/sitesupply-backend/pkg/migrate"
	"github.com/mateovergara/sitesupply-backend/pkg/outbox"
	"github.com/mateovergara/sitesupply-backend/pkg/pubsub"
	"github.com/mateovergara/sitesupply-backend/pkg/redis"
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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	projectsRepo := projects.NewRepository(dbClient.DB())
	gate, err := access.NewGate(projectsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create access gate", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	messagesRepo := messages.NewRepository(dbClient.DB())
	invoiceGenerator, err := invoices.NewGenerator(invoices.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice generator", err)
		os.Exit(1)
	}
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	registry := prometheus.NewRegistry()
	negotiationMetrics := metrics.NewNegotiationMetrics(registry)

	ordersService, err := orders.NewService(ordersRepo, dbClient, outboxService, gate, messagesRepo, projectsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	negotiationService, err := negotiation.NewService(
		ordersRepo,
		messagesRepo,
		invoiceGenerator,
		gate,
		dbClient,
		outboxService,
		ordersService,
		negotiationMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create negotiation service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, pubsubClient, ordersService, negotiationService, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

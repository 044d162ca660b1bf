package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"registration-service/internal/api"
	"registration-service/internal/config"
	"registration-service/internal/database"
	"registration-service/internal/events"
	"registration-service/internal/repository"
	"registration-service/internal/service"
	"registration-service/internal/tracing"
	_ "registration-service/migrations"
)

const (
	serviceName   = "registration-service"
	migrationsDir = "migrations"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		cfg, err := config.LoadForMigrations()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		api.SetupGlobalHandler(serviceName, cfg.LogLevel)
		handleMigrations(cfg)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	api.SetupGlobalHandler(serviceName, cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("Service stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	shutdownTracer, err := tracing.InitTracerProvider(ctx, serviceName, cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("Error shutting down tracer provider", slog.String("error", err.Error()))
		}
	}()

	db, err := database.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	mongoClient, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting MongoDB", slog.String("error", err.Error()))
		}
	}()

	var publisher events.EventPublisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			return err
		}
		publisher = natsPublisher
		slog.Info("Successfully connected to NATS.")
	}
	defer publisher.Close()

	passwords, err := service.NewPasswordEncoder(cfg.PasswordEncoder)
	if err != nil {
		return err
	}
	if cfg.PasswordEncoder == service.PasswordEncoderBcrypt {
		slog.Warn("Passwords will be stored as bcrypt hashes instead of verbatim")
	}

	userRepo := repository.NewPostgresUserRepository(db)
	profileRepo := repository.NewMongoProfileRepository(
		mongoClient.Database(cfg.MongoDBName).Collection(cfg.MongoCollectionName),
	)
	if err := profileRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	registrationService := service.NewRegistrationService(userRepo, profileRepo, publisher, passwords)

	registrationHandler := api.NewRegistrationHandler(registrationService, cfg.RequestTimeout)
	healthHandler := api.NewHealthHandler(serviceName, map[string]api.Pinger{
		"postgres": api.PingerFunc(db.PingContext),
		"mongodb": api.PingerFunc(func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		}),
	})

	app := api.NewApp(serviceName, registrationHandler, healthHandler)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("Listening", slog.String("service", serviceName), slog.String("port", cfg.AppPort))
		listenErr <- app.Listen(":" + cfg.AppPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-listenErr:
		return err
	case sig := <-quit:
		slog.Info("Shutting down", slog.String("signal", sig.String()))
	}

	// In-flight registrations finish before the stores are closed by the
	// deferred calls above.
	return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
}

func handleMigrations(cfg *config.Config) {
	slog.Info("Running database migrations...")

	db, err := database.ConnectPostgres(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB, migrationsDir); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	slog.Info("Migrations applied successfully!")
}

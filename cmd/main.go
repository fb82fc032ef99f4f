package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	gormlogger "gorm.io/gorm/logger"

	"github.com/keycasey/Neon-Goals-Service-sub000/config"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/compiler"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/extractor"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/notify"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/services"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/handlers"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/routes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded")
	}
	logger.InitializeAndConfigure()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.New(db.Options{
		Host:        cfg.DBHost,
		User:        cfg.DBUser,
		Password:    cfg.DBPassword,
		DBName:      cfg.DBName,
		Port:        cfg.DBPort,
		SSLEnabled:  cfg.DBSSLEnabled,
		AutoMigrate: cfg.DBAutoMigrate,
		LogLevel:    gormlogger.Warn,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	bus := events.NewBus()
	if cfg.RedisURL != "" {
		rdb, err := notify.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer func() { _ = rdb.Close() }()
		notify.Register(bus, notify.NewRedis(rdb))
	} else {
		notify.Register(bus, notify.Log{})
	}
	bus.Start(ctx)

	store := repos.NewStore(database)
	comp := compiler.New()
	ext := extractor.New(extractor.LLMOptions{
		BaseURL: cfg.ExtractorURL,
		APIKey:  cfg.ExtractorAPIKey,
		Model:   cfg.ExtractorModel,
		Timeout: cfg.ExtractorTimeout,
	}, comp)

	filterService := services.NewFiltersService(store.Goals, comp, ext, cfg.ExtractorTimeout)
	queueService := services.NewQueueService(store, filterService, bus, nil)
	workerService := services.NewWorkerService(store, queueService, filterService, bus, nil)
	goalService := services.NewGoalService(store, queueService, bus, nil)
	reaper := services.NewReaper(store, bus, cfg.StuckThreshold, nil)

	var dispatcher *services.Dispatcher
	if cfg.WorkerMode == config.WorkerModePush {
		dispatcher = services.NewDispatcher(store, queueService, workerService, cfg.WorkerURL, cfg.WorkerToken, cfg.DispatchBatch, nil)
	}
	scheduler := services.NewScheduler(services.SchedulerConfig{
		DispatchInterval:   cfg.DispatchInterval,
		StuckSweepInterval: cfg.StuckSweepInterval,
		NightlySchedule:    cfg.NightlySchedule,
	}, queueService, reaper, dispatcher)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	if cfg.WorkerToken == "" {
		logger.Warn("WORKER_TOKEN is not set, the worker protocol is unauthenticated")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(logger.APILogger())

	api := handlers.NewAPIHandler(goalService, queueService, workerService, filterService)
	routes.RegisterRoutes(app, routes.NewHandlers(api), cfg.WorkerToken)

	go func() {
		logger.InfoWithFields("Server listening", map[string]interface{}{
			"port":        cfg.Port,
			"worker_mode": cfg.WorkerMode,
		})
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	scheduler.Stop()
	cancel()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	filterService.Wait()
	bus.Wait()
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Stopped")
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

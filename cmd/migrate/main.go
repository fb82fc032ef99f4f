// This file is used to run database migrations
// How to run:
// go run ./cmd/migrate              # Run all pending migrations
// go run ./cmd/migrate -down        # Roll back the latest migration
// go run ./cmd/migrate -to 1        # Migrate up or down to version 1
// go run ./cmd/migrate -status      # Print the state of every migration
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"

	"github.com/keycasey/Neon-Goals-Service-sub000/config"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/migrations"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
)

func main() {
	logger.InitializeAndConfigure()
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}

	var (
		dsnFlag   = flag.String("db", "", "Database DSN (optional, defaults to env vars)")
		down      = flag.Bool("down", false, "Roll back the latest migration")
		to        = flag.Int64("to", -1, "Migrate to a specific version")
		status    = flag.Bool("status", false, "Print migration status and exit")
		retries   = flag.Int("retries", 5, "Number of connection retries")
		retryWait = flag.Duration("retry-wait", 3*time.Second, "Wait time between retries")
	)
	flag.Parse()

	dsn := *dsnFlag
	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			logger.Fatalf("Failed to load config: %v", err)
		}
		dsn = db.Options{
			Host:       cfg.DBHost,
			Port:       cfg.DBPort,
			User:       cfg.DBUser,
			Password:   cfg.DBPassword,
			DBName:     cfg.DBName,
			SSLEnabled: cfg.DBSSLEnabled,
		}.DSN()
	}

	ctx := context.Background()
	service, err := migrations.NewService(ctx, migrations.Config{
		DSN:           dsn,
		RetryAttempts: *retries,
		RetryDelay:    *retryWait,
	})
	if err != nil {
		logger.Fatalf("Failed to create migration service: %v", err)
	}
	defer func() { _ = service.Close() }()

	switch {
	case *status:
		err = service.Status(ctx)
	case *to >= 0:
		err = service.To(ctx, *to)
	case *down:
		err = service.Down(ctx)
	default:
		err = service.Up(ctx)
	}
	if err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}

	version, err := service.Version(ctx)
	if err != nil {
		logger.Warnf("Could not get final version: %v", err)
		return
	}
	logger.Infof("Current migration version: %d", version)
}

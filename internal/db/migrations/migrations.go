// Package migrations applies the versioned SQL schema with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	// registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

const dir = "sql"

// Config holds migration configuration
type Config struct {
	DSN           string
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RetryAttempts: 5,
		RetryDelay:    3 * time.Second,
	}
}

// Service runs migrations against one database
type Service struct {
	db *sql.DB
}

// NewService opens the database, retrying while it comes up
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.Warnf("Failed to connect to database, attempt %d/%d: %v", i+1, attempts, err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(cfg.RetryDelay):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempts, err)
	}

	if err := setup(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Service{db: db}, nil
}

func setup() error {
	goose.SetBaseFS(sqlFiles)
	goose.SetLogger(logger.Logger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Close releases the database handle
func (s *Service) Close() error {
	return s.db.Close()
}

// Up runs all pending migrations
func (s *Service) Up(ctx context.Context) error {
	if err := goose.UpContext(ctx, s.db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration
func (s *Service) Down(ctx context.Context) error {
	if err := goose.DownContext(ctx, s.db, dir); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// To migrates up or down to the given version
func (s *Service) To(ctx context.Context, version int64) error {
	current, err := s.Version(ctx)
	if err != nil {
		return err
	}
	if version >= current {
		err = goose.UpToContext(ctx, s.db, dir, version)
	} else {
		err = goose.DownToContext(ctx, s.db, dir, version)
	}
	if err != nil {
		return fmt.Errorf("failed to migrate to version %d: %w", version, err)
	}
	return nil
}

// Version returns the current schema version
func (s *Service) Version(ctx context.Context) (int64, error) {
	v, err := goose.GetDBVersionContext(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return v, nil
}

// Status logs the applied state of every migration
func (s *Service) Status(ctx context.Context) error {
	return goose.StatusContext(ctx, s.db, dir)
}

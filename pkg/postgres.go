package database

import (
	"context"
	"fmt"
	"time"

	"opengym/internal/metrics"
	"opengym/internal/models/config"
	"opengym/pkg/migrations"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func NewPostgres(cfg config.DatabaseConfig, log *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := Ping(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	log.Info("connected to postgres",
		zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.String("db", cfg.Name))
	return db, nil
}

// Ping checks the connection and records its latency.
func Ping(ctx context.Context, db *sqlx.DB) error {
	start := time.Now()
	err := db.PingContext(ctx)
	metrics.ObserveDBPing(time.Since(start))
	return err
}

// Migrate applies the embedded goose migrations.
func Migrate(db *sqlx.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db.DB, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

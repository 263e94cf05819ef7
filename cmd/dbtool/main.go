package main

import (
	"context"
	"database/sql"
	"fmt"
	"nearby-pro-service/internal/adapters/repositories"
	"nearby-pro-service/internal/config"
	"nearby-pro-service/internal/platform/db"
	"nearby-pro-service/internal/platform/logger"
	"os"
	"strings"

	"go.uber.org/zap"
)

func main() {
	config.LoadDotEnv()

	log, err := logger.New(config.Get("LOG_LEVEL", "info"), config.Get("LOG_FORMAT", "console"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(context.Background(), databaseURL)
	if err != nil {
		log.Fatal("open_db_failed", zap.Error(err))
	}
	defer conn.Close()

	seedPath := config.Get("ROSTER_PATH", "data/seeds/professionals.json")
	if err := initAndSeed(log, conn, seedPath); err != nil {
		log.Fatal("dbtool_failed", zap.Error(err))
	}
}

func initAndSeed(log *zap.Logger, conn *sql.DB, seedPath string) error {
	log.Info("initializing database schema")
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("schema ready")

	log.Info("seeding professionals", zap.String("path", seedPath))
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info("seeding complete")

	return nil
}

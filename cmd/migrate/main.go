// migrate applies the embedded schema to the Postgres store; go run ./cmd/migrate -direction up.
package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/ninadrathod/my-website/internal/config"
	"github.com/ninadrathod/my-website/internal/db/migrate"
	"github.com/ninadrathod/my-website/internal/logger"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}
	log := logger.New(cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()

	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		log.Error("invalid flag", zap.Error(err))
		os.Exit(2)
	}
	version, err := migrate.Run(cfg.DatabaseURL, dir)
	if err != nil {
		log.Error("migrate failed", zap.String("direction", string(dir)), zap.Error(err))
		os.Exit(1)
	}
	log.Info("migrate done", zap.String("direction", string(dir)), zap.Uint("version", version))
}

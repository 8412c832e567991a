package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"smarttour/internal/adapters/observability"
	redisad "smarttour/internal/adapters/redis"
	"smarttour/internal/app"
	"smarttour/internal/shared"
	mysqlrepo "smarttour/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "seeder")
	observability.Serve(cfg.MetricsAddr)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	f, err := os.Open(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("open seed file failed")
	}
	ds, err := app.ParseCatalogCSV(f)
	_ = f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}
	log.Info().Int("destinations", len(ds)).Msg("catalog parsed")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	events := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer events.Close()

	start := time.Now()
	n, err := app.NewSeedService(mysqlrepo.New(db), events).Seed(ctx, ds, cfg.SeedWorkers)
	switch {
	case errors.Is(err, app.ErrSeedPartial):
		log.Warn().Err(err).Int("stored", n).Dur("duration", time.Since(start)).Msg("seeding completed with failures")
		os.Exit(1)
	case err != nil:
		log.Fatal().Err(err).Int("stored", n).Msg("seeding failed")
	}
	log.Info().Int("stored", n).Dur("duration", time.Since(start)).Msg("seeding completed")
}

package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "smarttour/internal/adapters/http_server"
	"smarttour/internal/adapters/observability"
	redisad "smarttour/internal/adapters/redis"
	"smarttour/internal/app"
	"smarttour/internal/shared"
	mysqlrepo "smarttour/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	events := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewRecommendService(repo, repo, events, cfg.TopN)

	// an empty catalog still serves; the next catalog event fills it
	if err := svc.ReloadCatalog(ctx); err != nil {
		log.Warn().Err(err).Msg("initial catalog load failed")
	}
	if err := svc.ReloadRatings(ctx); err != nil {
		log.Warn().Err(err).Msg("initial ratings load failed")
	}

	go func() {
		for {
			err := events.Subscribe(ctx, svc.HandleEvent)
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("channel", redisad.Channel).Msg("model event subscription lost, retrying")
			time.Sleep(5 * time.Second)
		}
	}()

	// http
	srv := server.New(server.Options{CORSOrigins: cfg.CORSOrigins})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{R: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Int("top_n", cfg.TopN).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

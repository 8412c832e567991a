package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	server "smarttour/internal/adapters/http_server"
	"smarttour/internal/adapters/observability"
	"smarttour/internal/adapters/recommendapi"
	"smarttour/internal/app"
	"smarttour/internal/shared"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, "web")

	client, err := recommendapi.New(cfg.RecommendURL, recommendapi.Options{
		RPS:     cfg.RecommendRPS,
		Timeout: cfg.RecommendTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize recommendation client")
	}

	srv := server.New(server.Options{Timeout: cfg.RecommendTimeout + 5*time.Second})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountWeb(&server.Web{S: app.NewSubmissionService(client), RateLimit: cfg.WebRateLimit})

	log.Info().
		Str("addr", cfg.WebAddr).
		Str("recommend_url", cfg.RecommendURL).
		Int("rate_limit", cfg.WebRateLimit).
		Msg("web listening")
	httpSrv := &http.Server{Addr: cfg.WebAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

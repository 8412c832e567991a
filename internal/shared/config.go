package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string // recommendation API
	WebAddr     string // preferences page + submission handler
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	RecommendURL     string
	RecommendRPS     int
	RecommendTimeout time.Duration
	TopN             int

	CORSOrigins  []string
	WebRateLimit int // submissions per minute per IP, 0 disables

	SeedFile    string
	SeedWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:           env("APP_ENV", "prod"),
		HTTPAddr:         env("HTTP_ADDR", ":8080"),
		WebAddr:          env("WEB_ADDR", ":8081"),
		MetricsAddr:      env("METRICS_ADDR", ":9100"),
		MySQLDSN:         env("MYSQL_DSN", "root:root@tcp(localhost:3306)/smarttour?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:        env("REDIS_ADDR", "localhost:6379"),
		RedisPass:        env("REDIS_PASSWORD", ""),
		RedisDB:          atoi("REDIS_DB", 0),
		RecommendURL:     env("RECOMMEND_URL", "http://localhost:8080/recommend"),
		RecommendRPS:     atoi("RECOMMEND_RPS", 20),
		RecommendTimeout: time.Duration(atoi("RECOMMEND_TIMEOUT_SECONDS", 10)) * time.Second,
		TopN:             atoi("RECOMMEND_TOP_N", 5),
		CORSOrigins:      splitList(env("CORS_ORIGINS", "*")),
		WebRateLimit:     atoi("WEB_RATE_LIMIT", 60),
		SeedFile:         env("SEED_FILE", "data/attractions.csv"),
		SeedWorkers:      atoi("SEED_WORKERS", 8),
	}
	if c.TopN <= 0 {
		log.Warn().Int("top_n", c.TopN).Msg("RECOMMEND_TOP_N must be positive, using 5")
		c.TopN = 5
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package shared_test

import (
	"testing"
	"time"

	"smarttour/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("METRICS_ADDR", "")
	c := shared.Load()
	if c.MetricsAddr != ":9100" {
		t.Fatalf("MetricsAddr: got %q", c.MetricsAddr)
	}
	if c.TopN != 5 {
		t.Fatalf("TopN: got %d", c.TopN)
	}
	if c.RecommendTimeout != 10*time.Second {
		t.Fatalf("RecommendTimeout: got %s", c.RecommendTimeout)
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Fatalf("CORSOrigins: got %v", c.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RECOMMEND_URL", "http://ml.internal/recommend")
	t.Setenv("RECOMMEND_TOP_N", "-3")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("SEED_WORKERS", "not-a-number")
	t.Setenv("METRICS_ADDR", "127.0.0.1:9200")

	c := shared.Load()
	if c.RecommendURL != "http://ml.internal/recommend" {
		t.Fatalf("RecommendURL: got %s", c.RecommendURL)
	}
	if c.TopN != 5 {
		t.Fatalf("negative TopN should fall back to 5, got %d", c.TopN)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("CORSOrigins: got %v", c.CORSOrigins)
	}
	if c.MetricsAddr != "127.0.0.1:9200" {
		t.Fatalf("MetricsAddr: got %q", c.MetricsAddr)
	}
	if c.SeedWorkers != 8 {
		t.Fatalf("bad SEED_WORKERS should keep default, got %d", c.SeedWorkers)
	}
}

package config

import (
	"reflect"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv(envMap(nil))
	if cfg.App != "dev" || cfg.Port != "8080" {
		t.Errorf("App/Port = %q/%q", cfg.App, cfg.Port)
	}
	if cfg.ScoreboardCacheTTL != 5*time.Minute {
		t.Errorf("ScoreboardCacheTTL = %v", cfg.ScoreboardCacheTTL)
	}
	if cfg.LogFormat != "text" || cfg.LogLevel != "info" {
		t.Errorf("log = %q/%q", cfg.LogFormat, cfg.LogLevel)
	}
	if cfg.Production() || cfg.OnLambda() {
		t.Error("defaults should be dev, local")
	}
}

func TestFromEnv_Values(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"APP":                      "prod",
		"PORT":                     "9000",
		"DB_PATH":                  " league.db ",
		"REDIS_ADDR":               "localhost:6379",
		"REDIS_DB":                 "2",
		"REDIS_TLS":                "1",
		"SCOREBOARD_CACHE_TTL":     "30s",
		"S3_BUCKET":                "archive",
		"S3_FORCE_PATH_STYLE":      "true",
		"CORS_ALLOWED_ORIGINS":     "https://a.example, ,https://b.example",
		"AWS_LAMBDA_FUNCTION_NAME": "league",
	}))
	if cfg.DBPath != "league.db" || cfg.Port != "9000" || cfg.RedisDB != 2 || !cfg.RedisTLS {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ScoreboardCacheTTL != 30*time.Second || !cfg.S3ForcePathStyle {
		t.Errorf("ttl/path style = %v/%v", cfg.ScoreboardCacheTTL, cfg.S3ForcePathStyle)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	if !cfg.Production() || !cfg.OnLambda() || cfg.LogFormat != "json" {
		t.Errorf("prod/lambda/format = %v/%v/%q", cfg.Production(), cfg.OnLambda(), cfg.LogFormat)
	}
}

func TestFromEnv_BadNumbersFallBack(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{"REDIS_DB": "x", "SCOREBOARD_CACHE_TTL": "-1m"}))
	if cfg.RedisDB != 0 || cfg.ScoreboardCacheTTL != 5*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
}

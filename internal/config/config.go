// Package config reads the service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App  string
	Port string

	PostgresDSN           string
	PostgresMigrationsDir string
	DBPath                string
	DBMigrationsDir       string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisTLS           bool
	ScoreboardCacheTTL time.Duration

	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3ForcePathStyle bool

	AdminPasswordHash  string
	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	LambdaFunctionName string
}

func (c Config) Production() bool { return c.App == "prod" }

func (c Config) OnLambda() bool { return c.LambdaFunctionName != "" }

// Load reads .env and .env.local when running outside Lambda, then the
// process environment. Real environment variables win over the files.
func Load() Config {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
		_ = godotenv.Load(".env", ".env.local")
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) Config {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }
	cfg := Config{
		App:                   orDefault(get("APP"), "dev"),
		Port:                  orDefault(get("PORT"), "8080"),
		PostgresDSN:           get("POSTGRES_DSN"),
		PostgresMigrationsDir: get("POSTGRES_MIGRATIONS_DIR"),
		DBPath:                get("DB_PATH"),
		DBMigrationsDir:       get("DB_MIGRATIONS_DIR"),
		RedisAddr:             get("REDIS_ADDR"),
		RedisPassword:         getenv("REDIS_PASSWORD"),
		RedisDB:               atoi(get("REDIS_DB"), 0),
		RedisTLS:              boolean(get("REDIS_TLS")),
		ScoreboardCacheTTL:    duration(get("SCOREBOARD_CACHE_TTL"), 5*time.Minute),
		S3Bucket:              get("S3_BUCKET"),
		S3Region:              orDefault(get("S3_REGION"), "eu-central-1"),
		S3Endpoint:            get("S3_ENDPOINT"),
		S3AccessKey:           get("S3_ACCESS_KEY"),
		S3SecretKey:           getenv("S3_SECRET_KEY"),
		S3ForcePathStyle:      boolean(get("S3_FORCE_PATH_STYLE")),
		AdminPasswordHash:     get("ADMIN_PASSWORD_HASH"),
		LogLevel:              orDefault(get("LOG_LEVEL"), "info"),
		LogFormat:             get("LOG_FORMAT"),
		LambdaFunctionName:    get("AWS_LAMBDA_FUNCTION_NAME"),
	}
	for _, origin := range strings.Split(get("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
		if cfg.Production() || cfg.OnLambda() {
			cfg.LogFormat = "json"
		}
	}
	return cfg
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func atoi(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func duration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func boolean(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

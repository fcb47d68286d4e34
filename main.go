package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	s3archive "saturday-league/internal/archive/s3"
	rediscache "saturday-league/internal/cache/redis"
	"saturday-league/internal/config"
	"saturday-league/internal/league"
	"saturday-league/internal/logging"
	"saturday-league/internal/store"
	"saturday-league/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat, "saturday-league")
	if err := run(cfg, logger); err != nil {
		logger.Error("saturday-league stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	appStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if closer, ok := appStore.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("close store", "err", err)
			}
		}()
	}

	opts := league.Options{Logger: logger, CacheTTL: cfg.ScoreboardCacheTTL}
	checks := map[string]func(context.Context) error{}
	if cfg.RedisAddr != "" {
		client, err := rediscache.New(ctx, rediscache.ClientConfig{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			TLSEnabled: cfg.RedisTLS,
		})
		if err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		defer client.Close()
		opts.Cache = rediscache.NewCache(client)
		checks["redis"] = client.Ping
	}
	if cfg.S3Bucket != "" {
		archive, err := s3archive.New(ctx, s3archive.ClientConfig{
			Endpoint:       cfg.S3Endpoint,
			Region:         cfg.S3Region,
			Bucket:         cfg.S3Bucket,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			ForcePathStyle: cfg.S3ForcePathStyle,
		})
		if err != nil {
			return fmt.Errorf("configure snapshot archive %s: %w", cfg.S3Bucket, err)
		}
		opts.Archiver = archive
	}

	svc := league.NewService(appStore, opts)
	if _, inMemory := appStore.(*store.MemoryStore); inMemory && !cfg.Production() {
		if err := svc.Seed(ctx); err != nil {
			return fmt.Errorf("seed demo league: %w", err)
		}
	}

	handler := web.NewServer(svc, web.Options{
		AdminPasswordHash:  cfg.AdminPasswordHash,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             logger,
		ReadyChecks:        checks,
	}).Routes()

	if cfg.OnLambda() {
		logger.Info("starting in lambda mode", "function", cfg.LambdaFunctionName)
		lambda.Start(httpadapter.New(handler).ProxyWithContext)
		return nil
	}
	return serve(logger, ":"+cfg.Port, handler)
}

// openStore picks Postgres, then SQLite, then memory, by which settings are present.
func openStore(cfg config.Config) (store.Store, error) {
	if cfg.PostgresDSN != "" {
		return store.NewPostgresStore(cfg.PostgresDSN, store.PostgresOptions{MigrationsDir: cfg.PostgresMigrationsDir})
	}
	if cfg.DBPath != "" {
		return store.NewSQLiteStore(cfg.DBPath, store.SQLiteOptions{MigrationsDir: cfg.DBMigrationsDir})
	}
	return store.NewMemoryStore(), nil
}

func serve(logger *slog.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

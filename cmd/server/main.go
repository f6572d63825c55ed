package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/pricematch/internal/config"
	"github.com/JonMunkholm/pricematch/internal/ingest"
	"github.com/JonMunkholm/pricematch/internal/logging"
	"github.com/JonMunkholm/pricematch/internal/runlock"
	"github.com/JonMunkholm/pricematch/internal/service"
	"github.com/JonMunkholm/pricematch/internal/store/postgres"
	"github.com/JonMunkholm/pricematch/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := postgres.New(pool)
	if cfg.Database.Migrate {
		if err := st.Migrate(ctx); err != nil {
			slog.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		slog.Info("database schema applied")
	}

	normalizer, err := newNormalizer(cfg.Ingest)
	if err != nil {
		slog.Error("failed to load header synonyms", "error", err)
		os.Exit(1)
	}

	locker, closeLocker, err := newLocker(ctx, cfg.Redis)
	if err != nil {
		slog.Error("failed to set up run lock", "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	opts := append(service.OptionsFromConfig(cfg, normalizer), service.WithLocker(locker))
	svc := service.New(st, opts...)

	server := web.NewServer(svc, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if active := svc.UploadLimiter().ActiveCount(); active > 0 {
			slog.Info("waiting for uploads to complete", "active", active)
			if err := svc.UploadLimiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			}
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// newNormalizer applies the optional synonyms file.
func newNormalizer(cfg config.IngestConfig) (*ingest.Normalizer, error) {
	if cfg.SynonymsFile == "" {
		return ingest.NewNormalizer(), nil
	}
	syn, err := ingest.LoadSynonyms(cfg.SynonymsFile)
	if err != nil {
		return nil, err
	}
	slog.Info("header synonyms loaded", "file", cfg.SynonymsFile)
	return ingest.NewNormalizer(ingest.WithSynonyms(syn)), nil
}

// newLocker uses Redis when configured so runs are serialized across
// instances; otherwise runs are serialized within this process only.
func newLocker(ctx context.Context, cfg config.RedisConfig) (runlock.Locker, func(), error) {
	if cfg.URL == "" {
		slog.Warn("REDIS_URL not set, matching runs are locked per process")
		return runlock.NewLocal(), func() {}, nil
	}

	client, err := runlock.Dial(ctx, cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("run lock backed by redis", "key", cfg.LockKey, "ttl", cfg.LockTTL)
	return runlock.NewRedis(client, cfg.LockKey, cfg.LockTTL), func() { client.Close() }, nil
}

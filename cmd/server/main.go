package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-directory/internal/auth"
	"campus-directory/internal/config"
	"campus-directory/internal/database"
	"campus-directory/internal/events"
	"campus-directory/internal/logger"
	"campus-directory/internal/osm"
	"campus-directory/internal/routes"
	"campus-directory/internal/services"
	"campus-directory/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	db, err := database.New(cfg.DatabaseURL, cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(startCtx, db); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}
	if n, err := database.SeedEvents(startCtx, db, services.SeedEvents(time.Now())); err != nil {
		logr.Warn("failed to seed events", zap.Error(err))
	} else if n > 0 {
		logr.Info("seeded events", zap.Int("count", n))
	}

	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTIssuer)
	if err != nil {
		logr.Fatal("failed to init jwt manager", zap.Error(err))
	}

	nominatim := osm.NewNominatimClient(cfg.NominatimURL, cfg.GeoUserAgent, logr.Logger)
	institutions := services.NewInstitutionService(nominatim, snapshotStore(cfg, logr), logr.Logger)
	if err := institutions.LoadSnapshot(startCtx); err != nil {
		logr.Warn("failed to load institution snapshot", zap.Error(err))
	}
	cancelStart()

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaReviewTopic, logr.Logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logr.Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	h := routes.NewHandlers(db, cfg, logr, jwtMgr, institutions, publisher)
	r := routes.NewRouter(cfg, h)

	// WriteTimeout leaves room for the Overpass server-side timeout.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}

	logr.Info("server exited gracefully")
}

// snapshotStore reads from MinIO when an endpoint and bucket are configured,
// otherwise from the local snapshot file.
func snapshotStore(cfg *config.Config, logr *logger.Logger) storage.SnapshotStore {
	if cfg.MinioEndpoint == "" || cfg.SnapshotBucket == "" {
		return storage.NewFileStore(cfg.SnapshotPath)
	}

	store, err := storage.NewS3Store(storage.S3Options{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		Bucket:    cfg.SnapshotBucket,
		Object:    cfg.SnapshotObject,
	})
	if err != nil {
		logr.Warn("invalid object storage settings, using snapshot file", zap.Error(err))
		return storage.NewFileStore(cfg.SnapshotPath)
	}
	return store
}

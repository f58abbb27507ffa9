// Command snapshot fetches schools, colleges and universities around
// Coimbatore from Overpass and writes them as the institution snapshot the
// server loads at start.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-directory/internal/config"
	"campus-directory/internal/logger"
	"campus-directory/internal/osm"
	"campus-directory/internal/storage"

	"go.uber.org/zap"
)

var (
	outFlag     = flag.String("out", "", "snapshot file to write (defaults to INSTITUTIONS_SNAPSHOT)")
	uploadFlag  = flag.Bool("upload", false, "also upload the snapshot to object storage")
	regionFlag  = flag.String("region", "us-east-1", "bucket region used when the bucket has to be created")
	timeoutFlag = flag.Duration("timeout", 90*time.Second, "overall time limit")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeoutFlag)
	defer cancel()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Error("snapshot failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *logger.Logger) error {
	overpass := osm.NewOverpassClient(cfg.OverpassURL, cfg.GeoUserAgent, cfg.SearchRadius, cfg.MaxResults, logr.Logger)

	elements, err := overpass.Query(ctx, osm.BuildInstitutionQuery(osm.CoimbatoreBox))
	if err != nil {
		return err
	}
	institutions := osm.SnapshotInstitutions(elements, osm.CoimbatoreBox)
	logr.Info("institutions mapped",
		zap.Int("elements", len(elements)),
		zap.Int("institutions", len(institutions)))

	path := *outFlag
	if path == "" {
		path = cfg.SnapshotPath
	}
	if err := storage.NewFileStore(path).Save(ctx, institutions); err != nil {
		return err
	}
	logr.Info("snapshot written", zap.String("path", path))

	if !*uploadFlag {
		return nil
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
		return err
	}
	if err := store.EnsureBucket(ctx, *regionFlag); err != nil {
		return err
	}
	if err := store.Save(ctx, institutions); err != nil {
		return err
	}
	logr.Info("snapshot uploaded",
		zap.String("bucket", cfg.SnapshotBucket),
		zap.String("object", cfg.SnapshotObject))
	return nil
}

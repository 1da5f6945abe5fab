package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"askdata/internal/gateway/config"
	"askdata/internal/gateway/repository/archive"
)

type gatewayStores struct {
	archive archive.Store
	db      *sql.DB
	metrics prometheus.Collector
}

func (s *gatewayStores) Close() error {
	if s == nil {
		return nil
	}
	if s.metrics != nil {
		prometheus.Unregister(s.metrics)
		s.metrics = nil
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initStores picks the run archive backend: S3 when configured, then
// Postgres when DATABASE_URL is set, then memory. Every backend is read
// through an LRU cache whose counters are served on /metrics.
func initStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gatewayStores, error) {
	stores := &gatewayStores{}
	origin, kind, err := chooseArchiveStore(ctx, cfg, stores)
	if err != nil {
		return nil, err
	}
	log.Info().Str("backend", kind).Str("bucket", cfg.Artifact.Bucket).Msg("run archive store")
	cached := archive.NewCachedStore(origin, archive.DefaultCacheConfig())
	if err := prometheus.Register(cached); err != nil {
		log.Warn().Err(err).Msg("archive cache metrics not registered")
	} else {
		stores.metrics = cached
	}
	stores.archive = cached
	return stores, nil
}

func chooseArchiveStore(ctx context.Context, cfg *config.Config, stores *gatewayStores) (archive.Store, string, error) {
	if cfg.Artifact.CanUseS3() {
		s3Store, err := archive.NewS3Store(archive.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize archive s3 store: %w", err)
		}
		return s3Store, "s3", nil
	}
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := archive.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open archive db: %w", err)
		}
		stores.db = db
		return archive.NewPostgresStore(db), "postgres", nil
	}
	return archive.NewMemoryStore(), "in-memory", nil
}

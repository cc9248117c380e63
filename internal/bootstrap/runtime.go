// Package bootstrap wires the process-level runtime shared by the server and the CLI tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/config"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/database"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs ApplySchema according to DB_SCHEMA_MODE after connecting.
	ApplySchema bool
	// Tracing installs the OpenTelemetry tracer provider.
	Tracing bool
}

// Runtime holds the storage handles and the tracer shutdown hook.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime connects to the database and Redis. Redis is optional: an unreachable
// instance leaves Redis nil and the engine runs degraded.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{shutdownTracing: func(context.Context) error { return nil }}

	if opts.Tracing {
		shutdown, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "forum-engine",
			ServiceVersion: "1.0.0",
			Environment:    cfg.Env,
			Enabled:        cfg.TracingEnabled,
			Exporter:       cfg.TracingExporter,
			OTLPEndpoint:   cfg.TracingEndpoint,
			SamplerRatio:   cfg.TracingSamplerRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("tracing init failed: %w", err)
		}
		rt.shutdownTracing = shutdown
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("schema apply failed: %w", err)
		}
	}

	rt.Redis = cache.InitRedis(cfg.RedisURL)
	if rt.Redis == nil {
		middleware.Logger.Warn("running without Redis: vote quotas follow the configured fail policy and caching is disabled",
			slog.Bool("vote_quota_fail_closed", cfg.VoteQuotaFailClosed))
	}

	return rt, nil
}

// Close flushes pending spans. Storage handles are closed by their owner.
func (r *Runtime) Close(ctx context.Context) error {
	return r.shutdownTracing(ctx)
}

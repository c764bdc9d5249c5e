package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"chronoledger/internal/admin"
	"chronoledger/internal/allocator"
	"chronoledger/internal/platform/config"
	"chronoledger/internal/platform/metrics"
	"chronoledger/internal/platform/postgres"
	platformredis "chronoledger/internal/platform/redis"
	ratelimitmw "chronoledger/internal/ratelimit/middleware"
	"chronoledger/internal/ratelimit/store/bucket"
	audit "chronoledger/pkg/platform/audit"
	"chronoledger/pkg/platform/audit/publisher"
	"chronoledger/pkg/platform/audit/publishers/guarded"
	"chronoledger/pkg/platform/audit/publishers/kafka"
	auditmemory "chronoledger/pkg/platform/audit/store/memory"
	auditpostgres "chronoledger/pkg/platform/audit/store/postgres"
)

const auditBufferSize = 1024

// infra holds the optional backing services. Either field may be nil.
type infra struct {
	redis   *goredis.Client
	db      *sql.DB
	closers []func()
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}

	redisClient, err := platformredis.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		in.redis = redisClient
		in.closers = append(in.closers, func() { closeQuietly(log, "redis", redisClient.Close) })
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if db != nil {
		in.db = db
		in.closers = append(in.closers, func() { closeQuietly(log, "postgres", db.Close) })
	}
	return in, nil
}

// healthChecks reports one check per configured backing service.
func (in *infra) healthChecks() map[string]func(context.Context) error {
	checks := make(map[string]func(context.Context) error)
	if in.redis != nil {
		checks["redis"] = platformredis.Ping(in.redis)
	}
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	return checks
}

func (in *infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
}

type idAllocator interface {
	Next(ctx context.Context) (uint64, error)
}

func buildAllocator(ctx context.Context, cfg config.Config, in *infra) (idAllocator, error) {
	switch cfg.Allocator.Backend {
	case config.AllocatorRedis:
		return allocator.NewRedis(in.redis, allocator.WithKey(cfg.Allocator.RedisKey)), nil
	case config.AllocatorPostgres:
		a, err := allocator.NewPostgres(in.db, cfg.Allocator.Sequence)
		if err != nil {
			return nil, fmt.Errorf("create postgres allocator: %w", err)
		}
		if err := a.EnsureSequence(ctx); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return allocator.NewCounter(), nil
	}
}

// auditBackend is both the publisher's store and the admin endpoint's reader.
type auditBackend interface {
	audit.Store
	admin.AuditReader
}

func buildAuditStore(ctx context.Context, cfg config.Config, in *infra) (auditBackend, error) {
	if cfg.Audit.Backend != config.AuditPostgres {
		return auditmemory.NewInMemoryStore(), nil
	}
	store := auditpostgres.New(in.db)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// buildPublisher returns the audit publisher and a close func that drains it
// before the Kafka client is closed.
func buildPublisher(ctx context.Context, cfg config.Config, store audit.Store, reg prometheus.Registerer, log *slog.Logger) (*publisher.Publisher, func(), error) {
	opts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(auditBufferSize),
	}
	if len(cfg.Kafka.Brokers) == 0 {
		pub := publisher.NewPublisher(store, opts...)
		return pub, pub.Close, nil
	}

	kp, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka audit publisher: %w", err)
	}
	if err := kp.EnsureTopic(ctx, 1, 1); err != nil {
		log.Warn("could not ensure audit topic", "topic", cfg.Kafka.Topic, "error", err)
	}
	opts = append(opts, publisher.WithSink(guarded.New(kp,
		guarded.WithMetrics(guarded.NewMetrics(reg)),
		guarded.WithLogger(log),
	)))
	pub := publisher.NewPublisher(store, opts...)
	return pub, func() {
		pub.Close()
		kp.Close()
	}, nil
}

func buildRateLimiter(cfg config.Config, in *infra, m *metrics.Metrics, log *slog.Logger) func(http.Handler) http.Handler {
	var store ratelimitmw.BucketStore = bucket.NewInMemoryBucketStore()
	if in.redis != nil {
		store = bucket.NewRedisBucketStore(in.redis)
	}
	return ratelimitmw.New(store, cfg.RateLimit.Requests, cfg.RateLimit.Window, log,
		ratelimitmw.WithMetrics(m),
	).Handler
}

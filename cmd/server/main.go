package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"chronoledger/internal/admin"
	anomalyhandler "chronoledger/internal/anomaly/handler"
	anomalyservice "chronoledger/internal/anomaly/service"
	anomalystore "chronoledger/internal/anomaly/store"
	jwttoken "chronoledger/internal/jwt_token"
	"chronoledger/internal/platform/config"
	"chronoledger/internal/platform/httpserver"
	"chronoledger/internal/platform/logger"
	"chronoledger/internal/platform/metrics"
	"chronoledger/internal/platform/middleware"
	"chronoledger/internal/policy"
	timelinehandler "chronoledger/internal/timeline/handler"
	timelineservice "chronoledger/internal/timeline/service"
	timelinestore "chronoledger/internal/timeline/store"
	httptransport "chronoledger/internal/transport/http"
	id "chronoledger/pkg/domain"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chronoledger: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	backing, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backing.Close()

	ids, err := buildAllocator(ctx, cfg, backing)
	if err != nil {
		return err
	}
	auditStore, err := buildAuditStore(ctx, cfg, backing)
	if err != nil {
		return err
	}
	pub, closePublisher, err := buildPublisher(ctx, cfg, auditStore, reg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	owners := make([]id.Principal, 0, len(cfg.Ledger.Owners))
	for _, o := range cfg.Ledger.Owners {
		owners = append(owners, id.Principal(o))
	}
	pol := policy.NewOwnerPolicy(owners...)

	timelines, err := timelineservice.New(timelinestore.NewInMemory(), ids, pol,
		timelineservice.WithLogger(log),
		timelineservice.WithMetrics(m),
		timelineservice.WithAuditPublisher(pub),
	)
	if err != nil {
		return fmt.Errorf("create timeline service: %w", err)
	}

	anomalyOpts := []anomalyservice.Option{
		anomalyservice.WithLogger(log),
		anomalyservice.WithMetrics(m),
		anomalyservice.WithAuditPublisher(pub),
	}
	if cfg.Ledger.VoteMode == config.VoteModeAttested {
		anomalyOpts = append(anomalyOpts, anomalyservice.WithAttestedVoting())
	}
	anomalies, err := anomalyservice.New(anomalystore.NewInMemory(), ids, pol, anomalyOpts...)
	if err != nil {
		return fmt.Errorf("create anomaly service: %w", err)
	}

	var validator middleware.TokenValidator
	if cfg.Server.JWTSigningKey != "" {
		tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
		validator = tokens.Verifier()
	}

	// The default registry carries the Go and process collectors and the
	// allocator latency histogram.
	gatherer := prometheus.Gatherers{reg, prometheus.DefaultGatherer}
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        m,
		Gatherer:       gatherer,
		Tracer:         otel.Tracer("chronoledger"),
		TokenValidator: validator,
		RequestTimeout: cfg.Server.RequestTimeout,
		HealthChecks:   backing.healthChecks(),
		RateLimit:      buildRateLimiter(cfg, backing, m, log),
		Handlers: []httptransport.Registrar{
			timelinehandler.New(timelines, log),
			anomalyhandler.New(anomalies, log),
			admin.New(auditStore, pol, log),
		},
	})
	srv := httpserver.New(cfg.Server.Addr, router,
		httpserver.WithRequestTimeout(cfg.Server.RequestTimeout),
		httpserver.WithLogger(log),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting chronoledger",
			"addr", cfg.Server.Addr,
			"allocator", cfg.Allocator.Backend,
			"audit_store", cfg.Audit.Backend,
			"vote_mode", cfg.Ledger.VoteMode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// closeQuietly logs close errors during teardown.
func closeQuietly(log *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Warn("close failed", "resource", name, "error", err)
	}
}

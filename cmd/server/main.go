package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	assetstore "formview/internal/asset/store"
	jwttoken "formview/internal/jwt_token"
	"formview/internal/platform/config"
	"formview/internal/platform/httpserver"
	platformkafka "formview/internal/platform/kafka"
	"formview/internal/platform/logger"
	"formview/internal/platform/metrics"
	"formview/internal/platform/postgres"
	platformredis "formview/internal/platform/redis"
	"formview/internal/submission/cache"
	"formview/internal/submission/handler"
	"formview/internal/submission/importer"
	"formview/internal/submission/service"
	submissionstore "formview/internal/submission/store"
	audit "formview/pkg/platform/audit"
	"formview/pkg/platform/audit/publishers/ops"
	auditkafka "formview/pkg/platform/audit/store/kafka"
	auditmemory "formview/pkg/platform/audit/store/memory"
	"formview/pkg/platform/httputil"
	"formview/pkg/platform/tx"
)

type healthCheck func(ctx context.Context) error

type storeSet interface {
	service.AssetStore
	importer.AssetSaver
}

type submissionSet interface {
	service.SubmissionStore
	importer.SubmissionSaver
}

// main wires stores, cache and audit sink from configuration, falling back
// to in-memory implementations for anything left unconfigured.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	checks := map[string]healthCheck{}

	var (
		assets      storeSet
		submissions submissionSet
		runner      tx.Runner = tx.Direct{}
	)
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("failed to migrate postgres", "error", err)
			os.Exit(1)
		}
		assets = assetstore.NewPostgres(db)
		submissions = submissionstore.NewPostgres(db)
		runner = tx.NewSQLRunner(db)
		checks["postgres"] = db.PingContext
		log.Info("using postgres stores")
	} else {
		assets = assetstore.NewInMemory()
		submissions = submissionstore.NewInMemory()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	if cfg.SeedFile != "" {
		bundles, err := importer.LoadFile(cfg.SeedFile)
		if err != nil {
			log.Error("failed to read seed file", "path", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
		if err := importer.New(assets, submissions, runner, log).Import(ctx, bundles...); err != nil {
			log.Error("failed to import seed file", "path", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	var displayCache service.DisplayCache
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		displayCache = cache.NewRedis(redisClient.Client, cfg.DisplayCacheTTL)
		checks["redis"] = redisClient.Health
		log.Info("using redis display cache", "ttl", cfg.DisplayCacheTTL)
	} else {
		displayCache = cache.NewInMemory(cfg.DisplayCacheTTL)
	}

	var auditStore audit.Store
	kafkaClient, err := platformkafka.New(cfg.Kafka)
	if err != nil {
		log.Error("failed to create kafka client", "error", err)
		os.Exit(1)
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
		if err := platformkafka.EnsureTopic(ctx, kafkaClient, cfg.Kafka.AuditTopic); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		auditStore = auditkafka.New(kafkaClient, cfg.Kafka.AuditTopic)
		checks["kafka"] = kafkaClient.Ping
		log.Info("publishing audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}
	auditor := ops.New(auditStore,
		ops.WithLogger(log),
		ops.WithMetrics(ops.NewMetrics(prometheus.DefaultRegisterer)),
	)

	svc, err := service.New(assets, submissions,
		service.WithLogger(log),
		service.WithCache(displayCache),
		service.WithAuditPublisher(auditor),
		service.WithMetrics(m),
	)
	if err != nil {
		log.Error("failed to create display service", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(checks))
	handler.New(svc, log, m, jwtService).Register(r)

	srv := httpserver.New(cfg.Addr, r)
	go func() {
		log.Info("starting formview", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func healthHandler(checks map[string]healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := map[string]string{}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httputil.WriteJSON(w, code, status)
	}
}

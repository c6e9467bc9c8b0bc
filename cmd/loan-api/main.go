package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"loan-workers/internal/api"
	"loan-workers/internal/common/aws"
	"loan-workers/internal/common/config"
	"loan-workers/internal/common/database"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/observability"
	"loan-workers/internal/completion"
	"loan-workers/internal/docstore"
	"loan-workers/internal/pipeline"
	"loan-workers/internal/policy"
	"loan-workers/internal/results"
	"loan-workers/internal/workers/loan/audit"
	"loan-workers/internal/workers/loan/communication"
	"loan-workers/internal/workers/loan/intake"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loan API...")

	obs := observability.New("loan-api", cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	policy.ApplyOverrides(cfg.Policy.BaseRatePercent, cfg.Policy.MaxFOIRPercent, cfg.Policy.LoanCap)

	ctx := context.Background()

	documents := docstore.NewDirStore(cfg.Documents.Path)

	resultStore, appDB := buildResultStore(ctx, cfg, log, zapLog)
	if appDB != nil {
		if err := intake.EnsureSchema(ctx, appDB); err != nil {
			zapLog.Fatal("intake schema migration failed", zap.Error(err))
		}
	}

	var completionClient completion.Client
	if cfg.Completion.Stub || cfg.Completion.BaseURL == "" {
		completionClient = completion.NewStubClient()
		zapLog.Info("Completion collaborator running in stub mode")
	} else {
		completionClient = completion.NewHTTPClient(cfg.Completion.BaseURL, cfg.Completion.APIKey, cfg.Completion.Model, log)
		zapLog.Info("Completion collaborator configured", zap.String("model", cfg.Completion.Model))
	}

	var emailSender communication.EmailSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		emailSender = communication.NewSESSender(sesClient, cfg.Notifications.Email.FromEmail)
	}

	var smsSender communication.SMSSender
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		smsSender = communication.NewSNSSender(snsClient, cfg.Notifications.SMS.SenderID)
	}

	var indexer audit.Indexer
	if esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
		zapLog.Warn("elasticsearch unavailable, audit reports will not be indexed", zap.Error(err))
	} else if err := esClient.Ping(); err != nil {
		zapLog.Warn("elasticsearch unreachable, audit reports will not be indexed", zap.Error(err))
	} else {
		indexer = audit.NewElasticsearchIndexer(esClient, cfg.Database.Elasticsearch.AuditIndex)
	}

	p := pipeline.New(pipeline.Options{
		Logger:        log,
		Store:         documents,
		DB:            appDB,
		Completion:    completionClient,
		Tools:         completion.NewLoanToolRegistry(documents),
		Email:         emailSender,
		SMS:           smsSender,
		Indexer:       indexer,
		Observability: obs,
	})

	server := api.NewServer(p, documents, resultStore, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: server.Handler(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.HTTP.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Loan API stopped gracefully")
}

// buildResultStore prefers Postgres fronted by a Redis cache, and falls
// back to the file store when the database is unreachable so the API keeps
// working in a degraded single-node setup. The returned *sql.DB is nil on
// the file fallback; intake record persistence is then disabled.
func buildResultStore(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (results.Store, *sql.DB) {
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err == nil {
		err = pg.Ping(ctx)
	}
	if err != nil {
		zapLog.Warn("postgres unavailable, storing results on disk",
			zap.Error(err), zap.String("path", cfg.Results.Path))
		return results.NewFileStore(cfg.Results.Path), nil
	}

	store := results.NewPostgresStore(pg, cfg.Results.Table)
	if err := store.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("results schema migration failed", zap.Error(err))
	}

	redis, err := database.NewRedis(cfg.Database.Redis)
	if err == nil {
		err = redis.Ping(ctx)
	}
	if err != nil {
		zapLog.Warn("redis unavailable, result reads go straight to postgres", zap.Error(err))
		return store, pg.GetDB()
	}

	ttl := time.Duration(cfg.Results.CacheTTL) * time.Second
	return results.NewCachedStore(store, redis, ttl, log), pg.GetDB()
}

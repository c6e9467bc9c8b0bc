package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-workers/internal/common/aws"
	"loan-workers/internal/common/camunda"
	"loan-workers/internal/common/config"
	"loan-workers/internal/common/database"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/observability"
	"loan-workers/internal/docstore"
	"loan-workers/internal/policy"
	"loan-workers/pkg/registry"

	av "loan-workers/internal/workers/loan/assetvaluation"
	au "loan-workers/internal/workers/loan/audit"
	cm "loan-workers/internal/workers/loan/communication"
	ca "loan-workers/internal/workers/loan/creditassessment"
	in "loan-workers/internal/workers/loan/intake"
	of "loan-workers/internal/workers/loan/offer"
	ql "loan-workers/internal/workers/loan/qualification"
	uw "loan-workers/internal/workers/loan/underwriting"
	vd "loan-workers/internal/workers/loan/verifydocs"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager", cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	policy.ApplyOverrides(cfg.Policy.BaseRatePercent, cfg.Policy.MaxFOIRPercent, cfg.Policy.LoanCap)

	ctx := context.Background()

	reg := registry.BuiltIn()
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}
	zapLog.Info("Activity registry loaded", zap.Int("activities", len(reg.Activities)))

	// --- Init Zeebe client with retry ---
	var camClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := in.EnsureSchema(ctx, pg.GetDB()); err != nil {
		zapLog.Fatal("intake schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init notification channels (optional) ---
	var emailSender cm.EmailSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		emailSender = cm.NewSESSender(sesClient, cfg.Notifications.Email.FromEmail)
		zapLog.Info("SES email sender initialized")
	}

	var smsSender cm.SMSSender
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		smsSender = cm.NewSNSSender(snsClient, cfg.Notifications.SMS.SenderID)
		zapLog.Info("SNS sms sender initialized")
	}

	documents := docstore.NewDirStore(cfg.Documents.Path)

	// --- Register the nine loan-stage workers ---

	var loanWorkers []*camunda.CamundaWorker

	{
		handler := in.NewHandler(
			&in.Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, in.TaskType).Timeout)},
			pg.GetDB(),
			log,
		)
		if w := startWorker(zeebeClient, reg, in.TaskType, config.GetWorkerConfig(cfg, in.TaskType), handler.Handle, zapLog); w != nil {
			loanWorkers = append(loanWorkers, w)
		}
	}

	{
		handler := vd.NewHandler(
			&vd.Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, vd.TaskType).Timeout)},
			documents,
			log,
		)
		if w := startWorker(zeebeClient, reg, vd.TaskType, config.GetWorkerConfig(cfg, vd.TaskType), handler.Handle, zapLog); w != nil {
			loanWorkers = append(loanWorkers, w)
		}
	}

	{
		handler := ql.NewHandler(
			&ql.Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, ql.TaskType).Timeout)},
			log,
		)
		if w := startWorker(zeebeClient, reg, ql.TaskType, config.GetWorkerConfig(cfg, ql.TaskType), handler.Handle, zapLog); w != nil {
			loanWorkers = append(loanWorkers, w)
		}
	}

	{
		handler := ca.NewHandler(
			&ca.Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, ca.TaskType).Timeout)},
			ca.NewStaticProvider(),
			log,
		)
		if w := startWorker(zeebeClient, reg, ca.TaskType, config.GetWorkerConfig(cfg, ca.TaskType), handler.Handle, zapLog); w != nil {
			loanWorkers = append(loanWorkers, w)
		}
	}

	{
		handler := av.NewHandler(
			&av.Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, av.TaskType).Timeout)},
			av.NewStaticProvider(),
			log,
		)
		if w := startWorker(zeebeClient, reg, av.TaskType, config.GetWorkerConfig(cfg, av.TaskType), handler.Handle, zapLog); w != nil {
			loanWorkers = append(loanWorkers, w)
		}
	}

	{
		handler := uw.NewHandler(
			&uw.Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, uw.TaskType).Timeout)},
			log,
		)
		if w := startWorker(zeebeClient, reg, uw.TaskType, config.GetWorkerConfig(cfg, uw.TaskType), handler.Handle, zapLog); w != nil {
			loanWorkers = append(loanWorkers, w)
		}
	}

	{
		ofCfg := of.LoadConfig()
		ofCfg.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, of.TaskType).Timeout)
		handler := of.NewHandler(ofCfg, log)
		if w := startWorker(zeebeClient, reg, of.TaskType, config.GetWorkerConfig(cfg, of.TaskType), handler.Handle, zapLog); w != nil {
			loanWorkers = append(loanWorkers, w)
		}
	}

	{
		handler := cm.NewHandler(
			&cm.Config{
				Timeout:     config.GetDuration(config.GetWorkerConfig(cfg, cm.TaskType).Timeout),
				FromAddress: cfg.Notifications.Email.FromEmail,
				SenderID:    cfg.Notifications.SMS.SenderID,
			},
			emailSender,
			smsSender,
			log,
		)
		if w := startWorker(zeebeClient, reg, cm.TaskType, config.GetWorkerConfig(cfg, cm.TaskType), handler.Handle, zapLog); w != nil {
			loanWorkers = append(loanWorkers, w)
		}
	}

	{
		handler := au.NewHandler(
			&au.Config{
				Timeout: config.GetDuration(config.GetWorkerConfig(cfg, au.TaskType).Timeout),
				Index:   cfg.Database.Elasticsearch.AuditIndex,
			},
			au.NewElasticsearchIndexer(esClient, cfg.Database.Elasticsearch.AuditIndex),
			log,
		)
		if w := startWorker(zeebeClient, reg, au.TaskType, config.GetWorkerConfig(cfg, au.TaskType), handler.Handle, zapLog); w != nil {
			loanWorkers = append(loanWorkers, w)
		}
	}

	zapLog.Info("All 9 loan workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")

			// Not ready while a backing store is unreachable.
			status := "ready"
			code := http.StatusOK
			if err := camClient.HealthCheck(r.Context()); err != nil {
				status, code = "zeebe unreachable", http.StatusServiceUnavailable
			} else if err := pg.Ping(r.Context()); err != nil {
				status, code = "postgres unreachable", http.StatusServiceUnavailable
			} else if err := esClient.Ping(); err != nil {
				status, code = "elasticsearch unreachable", http.StatusServiceUnavailable
			} else if err := redis.Ping(r.Context()); err != nil {
				status, code = "redis unreachable", http.StatusServiceUnavailable
			}

			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())

		addr := fmt.Sprintf(":%d", cfg.Observability.MetricsPort)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range loanWorkers {
		w.Stop(shutdownCtx)
	}

	if err := camClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, reg *registry.ActivityRegistry, taskType string, wcfg config.WorkerConfig, handle camunda.HandleFunc, log *zap.Logger) *camunda.CamundaWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	workerLog := log
	if act := reg.FindByTaskType(taskType); act != nil {
		workerLog = log.With(zap.String("activity", act.ID), zap.Int("stage", act.Stage))
	}

	return camunda.NewWorker(client, taskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handle, workerLog)
}

// cmd/loan-orchestrator/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"loan-orchestrator/internal/common/config"
	"loan-orchestrator/internal/common/database"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/observability"
	"loan-orchestrator/internal/crm"
	"loan-orchestrator/internal/pipeline"
	"loan-orchestrator/internal/server"
	"loan-orchestrator/internal/sink"
	kyccheck "loan-orchestrator/internal/steps/kyc-check"
	notifydecision "loan-orchestrator/internal/steps/notify-decision"
	renderletter "loan-orchestrator/internal/steps/render-letter"
	"loan-orchestrator/internal/steps/underwrite"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loan orchestrator...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("loan-orchestrator")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Backend connections ---
	// Only the backends selected in cfg.Storage are dialed; a csv-only
	// deployment starts with no external services at all.
	var pg *database.PostgresClient
	if needsPostgres(cfg) {
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
		zapLog.Info("PostgreSQL connected successfully")
	}

	var redisClient *database.RedisClient
	if needsRedis(cfg) {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
	}

	var esClient *database.ElasticsearchClient
	if cfg.Storage.Audit.Backend == "elasticsearch" {
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
	}

	// --- Stores and sinks ---
	var store crm.Store
	switch cfg.Storage.Profiles.Backend {
	case "postgres":
		store = crm.NewPostgresStore(pg.DB)
	default:
		store = crm.NewCSVStore(cfg.Storage.Profiles.CSVPath)
	}

	var auditSink sink.AuditSink
	switch cfg.Storage.Audit.Backend {
	case "postgres":
		auditSink = sink.NewPostgresAuditSink(pg.DB)
	case "redis":
		auditSink = sink.NewRedisAuditSink(redisClient.Client)
	case "elasticsearch":
		auditSink = sink.NewESAuditSink(esClient.Client, cfg.Database.Elasticsearch.AuditIndex)
	default:
		auditSink = sink.NewCSVAuditSink(cfg.Storage.Audit.CSVPath)
	}

	var metricsSink sink.MetricsSink
	switch cfg.Storage.Metrics.Backend {
	case "postgres":
		metricsSink = sink.NewPostgresMetricsSink(pg.DB)
	case "redis":
		metricsSink = sink.NewRedisMetricsSink(redisClient.Client)
	default:
		metricsSink = sink.NewCSVMetricsSink(cfg.Storage.Metrics.CSVPath)
	}

	// --- Step handlers ---
	uwConfig := &underwrite.Config{
		AnnualRatePercent: decimal.NewFromFloat(cfg.Underwriting.AnnualRatePercent),
		QuoteTenures:      cfg.Underwriting.QuoteTenures,
	}

	kycStep := kyccheck.NewHandler(nil, log)
	uwStep := underwrite.NewHandler(uwConfig, log)
	renderStep := renderletter.NewHandler(&renderletter.Config{
		OutputDir: cfg.Documents.Dir,
		BaseURL:   cfg.Documents.BaseURL,
	}, log)

	var notifier pipeline.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		notifyStep, err := notifydecision.NewHandler(&notifydecision.Config{
			EmailEnabled: cfg.Notifications.Email.Enabled,
			SMSEnabled:   cfg.Notifications.SMS.Enabled,
			FromEmail:    cfg.Notifications.Email.FromEmail,
			AWSRegion:    cfg.Notifications.AWS.Region,
		}, log)
		if err != nil {
			zapLog.Fatal("failed to create notify-decision handler", zap.Error(err))
		}
		notifier = notifyStep
		zapLog.Info("Decision notifications enabled")
	}

	orch := pipeline.NewOrchestrator(
		store, kycStep, uwStep, renderStep, notifier, auditSink, metricsSink, obs, log)

	srv := server.New(server.Deps{
		Config:       cfg,
		Logger:       log,
		Orchestrator: orch,
		Store:        store,
		Kyc:          kycStep,
		Underwriter:  uwStep,
		UWConfig:     uwConfig,
		Audit:        auditSink,
		Metrics:      metricsSink,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		zapLog.Fatal("server failed", zap.Error(err))
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, draining...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during shutdown", zap.Error(err))
	}

	zapLog.Info("Loan orchestrator stopped gracefully")
}

func needsPostgres(cfg *config.Config) bool {
	return cfg.Storage.Profiles.Backend == "postgres" ||
		cfg.Storage.Audit.Backend == "postgres" ||
		cfg.Storage.Metrics.Backend == "postgres"
}

func needsRedis(cfg *config.Config) bool {
	return cfg.Storage.Audit.Backend == "redis" ||
		cfg.Storage.Metrics.Backend == "redis"
}

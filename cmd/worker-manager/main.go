// cmd/worker-manager/main.go
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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/07Austs/talent2/internal/common/ai"
	"github.com/07Austs/talent2/internal/common/config"
	"github.com/07Austs/talent2/internal/common/database"
	"github.com/07Austs/talent2/internal/common/logger"
	"github.com/07Austs/talent2/internal/common/observability"

	// Matching Workers (3)
	cms "github.com/07Austs/talent2/internal/workers/matching/calculate-match-score"
	ge "github.com/07Austs/talent2/internal/workers/matching/generate-embedding"
	rcp "github.com/07Austs/talent2/internal/workers/matching/rank-candidate-pool"

	// Interview Workers (3)
	esi "github.com/07Austs/talent2/internal/workers/interview/evaluate-session-integrity"
	gsq "github.com/07Austs/talent2/internal/workers/interview/generate-surprise-question"
	si "github.com/07Austs/talent2/internal/workers/interview/schedule-interview"

	// Application Workers (3)
	car "github.com/07Austs/talent2/internal/workers/application/create-application-record"
	sn "github.com/07Austs/talent2/internal/workers/application/send-notification"
	vad "github.com/07Austs/talent2/internal/workers/application/validate-application-data"

	// Data Access Workers (2)
	qe "github.com/07Austs/talent2/internal/workers/data-access/query-elasticsearch"
	qp "github.com/07Austs/talent2/internal/workers/data-access/query-postgresql"
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

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
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

	// --- Init AI backends ---
	embedder, err := ai.NewEmbedder(cfg.AI.Embeddings)
	if err != nil {
		zapLog.Fatal("embedder initialization failed", zap.Error(err))
	}

	generator, err := ai.NewGenerator(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model)
	if err != nil {
		zapLog.Fatal("generator initialization failed", zap.Error(err))
	}
	zapLog.Info("AI backends initialized", zap.String("generationModel", generator.Model()))

	// --- 1. Matching Workers (3) ---

	if cfg.Workers[ge.TaskType].Enabled {
		handler := ge.NewHandler(
			&ge.Config{
				CacheTTL: time.Duration(cfg.Matching.EmbeddingCacheTTL) * time.Second,
				Timeout:  time.Duration(cfg.Workers[ge.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, redis.Client, embedder, log,
		)
		startWorker(zeebeClient, ge.TaskType, cfg.Workers[ge.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[cms.TaskType].Enabled {
		handler := cms.NewHandler(
			&cms.Config{
				CacheTTL: time.Duration(cfg.Matching.ProfileCacheTTL) * time.Second,
				Timeout:  time.Duration(cfg.Workers[cms.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, cms.TaskType, cfg.Workers[cms.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[rcp.TaskType].Enabled {
		handler := rcp.NewHandler(
			&rcp.Config{
				MaxItems: cfg.Matching.PoolMaxItems,
				Timeout:  time.Duration(cfg.Workers[rcp.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(zeebeClient, rcp.TaskType, cfg.Workers[rcp.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Interview Workers (3) ---

	if cfg.Workers[esi.TaskType].Enabled {
		handler := esi.NewHandler(
			&esi.Config{
				Timeout: time.Duration(cfg.Workers[esi.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, esi.TaskType, cfg.Workers[esi.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[si.TaskType].Enabled {
		handler := si.NewHandler(
			&si.Config{
				MinDuration: time.Duration(cfg.Interview.MinDurationMinutes) * time.Minute,
				MaxDuration: time.Duration(cfg.Interview.MaxDurationMinutes) * time.Minute,
				Timeout:     time.Duration(cfg.Workers[si.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, si.TaskType, cfg.Workers[si.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[gsq.TaskType].Enabled {
		handler := gsq.NewHandler(
			&gsq.Config{
				TimeLimitSecs: 120,
				Timeout:       time.Duration(cfg.Workers[gsq.TaskType].Timeout) * time.Millisecond,
			},
			generator, redis.Client, log,
		)
		startWorker(zeebeClient, gsq.TaskType, cfg.Workers[gsq.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Application Workers (3) ---

	if cfg.Workers[vad.TaskType].Enabled {
		handler, err := vad.NewHandler(&vad.Config{}, log)
		if err != nil {
			zapLog.Fatal("failed to create validate-application-data handler", zap.Error(err))
		}
		startWorker(zeebeClient, vad.TaskType, cfg.Workers[vad.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[car.TaskType].Enabled {
		handler := car.NewHandler(&car.Config{}, pg.DB, log)
		startWorker(zeebeClient, car.TaskType, cfg.Workers[car.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sn.TaskType].Enabled {
		handler, err := sn.NewHandler(
			&sn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[sn.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-notification handler", zap.Error(err))
		}
		startWorker(zeebeClient, sn.TaskType, cfg.Workers[sn.TaskType], handler.Handle, zapLog)
	}

	// --- 4. Data Access Workers (2) ---

	if cfg.Workers[qp.TaskType].Enabled {
		handler := qp.NewHandler(
			&qp.Config{
				Timeout: time.Duration(cfg.Workers[qp.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, qp.TaskType, cfg.Workers[qp.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[qe.TaskType].Enabled {
		handler := qe.NewHandler(
			&qe.Config{
				Timeout: time.Duration(cfg.Workers[qe.TaskType].Timeout) * time.Millisecond,
			},
			esClient.Client, log,
		)
		startWorker(zeebeClient, qe.TaskType, cfg.Workers[qe.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 11 workers registered successfully")

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
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}

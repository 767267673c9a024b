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

	"intentrisk-workers/internal/classifier"
	"intentrisk-workers/internal/common/camunda"
	"intentrisk-workers/internal/common/conferencing"
	"intentrisk-workers/internal/common/config"
	"intentrisk-workers/internal/common/database"
	"intentrisk-workers/internal/common/logger"
	"intentrisk-workers/internal/common/media"
	"intentrisk-workers/internal/common/metrics"
	"intentrisk-workers/internal/common/observability"
	"intentrisk-workers/internal/common/transcription"
	"intentrisk-workers/internal/engine"
	"intentrisk-workers/internal/store"

	// Call lifecycle workers (5)
	ac "intentrisk-workers/internal/workers/call/accept-call"
	ar "intentrisk-workers/internal/workers/call/analyze-recording"
	ec "intentrisk-workers/internal/workers/call/end-call"
	ic "intentrisk-workers/internal/workers/call/initiate-call"
	rc "intentrisk-workers/internal/workers/call/reject-call"

	// Interview workers (2)
	ai "intentrisk-workers/internal/workers/interview/analyze-interview"
	ii "intentrisk-workers/internal/workers/interview/invite-interview"

	// Notification worker (1)
	sn "intentrisk-workers/internal/workers/application/send-notification"
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
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
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
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Stores & Collaborator Clients ---
	calls := store.NewCallStore(pg.DB)
	interviews := store.NewInterviewStore(pg.DB)
	applications := store.NewApplicationStore(pg.DB)
	callCache := store.NewIncomingCallCache(redis.Client)
	assessments := store.NewAssessmentIndex(esClient.Client)

	tokens, err := conferencing.NewTokenService(
		cfg.Media.Conference.Host,
		cfg.Media.Conference.APIKey,
		cfg.Media.Conference.APISecret,
		time.Duration(cfg.Media.Conference.TokenTTL)*time.Second,
	)
	if err != nil {
		zapLog.Fatal("conferencing token service init failed", zap.Error(err))
	}

	transcriber := transcription.NewClient(transcription.Config{
		BaseURL:    cfg.Media.Transcription.BaseURL,
		APIKey:     cfg.Media.Transcription.APIKey,
		Timeout:    time.Duration(cfg.Media.Transcription.Timeout) * time.Millisecond,
		MaxRetries: cfg.Media.Transcription.MaxRetries,
	}, log)

	demuxer := media.NewDemuxer(cfg.Media.FFmpegPath, cfg.Media.Recordings.TempDir, 2*time.Minute, log)

	riskEngine := engine.New(engine.Config{
		ArtifactDir:     cfg.Analysis.ArtifactDir,
		Strategy:        cfg.Analysis.Strategy,
		MaxUploadBytes:  cfg.Analysis.MaxUploadBytes,
		MaxDurationSecs: cfg.Analysis.MaxDurationSecs,
	}, log)
	defer classifier.Reset()

	zapLog.Info("Stores and collaborator clients initialized")

	// --- Register Workers ---

	// --- 1. Call Lifecycle Workers (5) ---
	if cfg.Workers[ic.TaskType].Enabled {
		handler := ic.NewHandler(
			&ic.Config{
				Timeout: time.Duration(cfg.Workers[ic.TaskType].Timeout) * time.Millisecond,
			},
			calls, callCache, tokens, log,
		)
		startWorker(zeebeClient, ic.TaskType, cfg.Workers[ic.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ac.TaskType].Enabled {
		handler := ac.NewHandler(
			&ac.Config{
				Timeout: time.Duration(cfg.Workers[ac.TaskType].Timeout) * time.Millisecond,
			},
			calls, callCache, tokens, log,
		)
		startWorker(zeebeClient, ac.TaskType, cfg.Workers[ac.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[rc.TaskType].Enabled {
		handler := rc.NewHandler(
			&rc.Config{
				Timeout: time.Duration(cfg.Workers[rc.TaskType].Timeout) * time.Millisecond,
			},
			calls, callCache, log,
		)
		startWorker(zeebeClient, rc.TaskType, cfg.Workers[rc.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ec.TaskType].Enabled {
		handler := ec.NewHandler(
			&ec.Config{
				Timeout: time.Duration(cfg.Workers[ec.TaskType].Timeout) * time.Millisecond,
			},
			calls, callCache, log,
		)
		startWorker(zeebeClient, ec.TaskType, cfg.Workers[ec.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ar.TaskType].Enabled {
		handler := ar.NewHandler(
			&ar.Config{
				Timeout: time.Duration(cfg.Workers[ar.TaskType].Timeout) * time.Millisecond,
			},
			calls, assessments, riskEngine, transcriber, log,
		)
		startWorker(zeebeClient, ar.TaskType, cfg.Workers[ar.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Interview Workers (2) ---
	if cfg.Workers[ii.TaskType].Enabled {
		handler := ii.NewHandler(
			&ii.Config{
				Timeout: time.Duration(cfg.Workers[ii.TaskType].Timeout) * time.Millisecond,
			},
			interviews, applications, log,
		)
		startWorker(zeebeClient, ii.TaskType, cfg.Workers[ii.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ai.TaskType].Enabled {
		handler := ai.NewHandler(
			&ai.Config{
				Timeout: time.Duration(cfg.Workers[ai.TaskType].Timeout) * time.Millisecond,
			},
			interviews, applications, assessments, riskEngine, demuxer, transcriber, log,
		)
		startWorker(zeebeClient, ai.TaskType, cfg.Workers[ai.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Notification Worker (1) ---
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

	zapLog.Info("All 8 workers registered successfully")

	// --- Ring Timeout Sweeper ---
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runSweeper(sweepCtx, calls, cfg.Calls, zapLog)

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
	stopSweep()

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// runSweeper marks ringing calls older than the ring timeout as missed on
// a fixed ticker. The status guard in the UPDATE makes a concurrent
// accept or reject win over the sweep.
func runSweeper(ctx context.Context, calls *store.CallStore, cfg config.CallConfig, log *zap.Logger) {
	ringTimeout := time.Duration(cfg.RingTimeout) * time.Second
	interval := time.Duration(cfg.SweepInterval) * time.Second

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("ring timeout sweeper started",
		zap.Duration("ringTimeout", ringTimeout),
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("ring timeout sweeper stopped")
			return
		case <-ticker.C:
			swept, err := calls.SweepRinging(ctx, ringTimeout)
			if err != nil {
				log.Error("ring timeout sweep failed", zap.Error(err))
				continue
			}
			if swept > 0 {
				metrics.CallsSweptTotal.Add(float64(swept))
				log.Info("marked stale ringing calls as missed", zap.Int64("count", swept))
			}
		}
	}
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

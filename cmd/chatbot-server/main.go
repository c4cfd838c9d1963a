// cmd/chatbot-server/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"finchat/internal/common/config"
	"finchat/internal/common/database"
	commonerrors "finchat/internal/common/errors"
	"finchat/internal/common/logger"
	"finchat/internal/common/metrics"
	"finchat/internal/common/observability"
	"finchat/internal/contextstore"
	"finchat/internal/dialogue"
	"finchat/internal/finance"
	"finchat/internal/history"
	"finchat/internal/models"
	"finchat/internal/nlu/classifier"
	"finchat/internal/nlu/extractor"
	"finchat/internal/symbols"
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

// buildLogger constructs the process logger from the logging settings.
func buildLogger(cfg *config.Config) *zap.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

func main() {
	// Bootstrap logger until config tells us the real level and format
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting chatbot server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = buildLogger(cfg)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("chatbot-server")
	defer obs.Shutdown()

	ctx := context.Background()

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

	// --- Init PostgreSQL with retry (optional, chat history) ---
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Host != "" {
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
	} else {
		zapLog.Info("PostgreSQL not configured, chat history disabled")
	}

	// --- Symbol directory: static table or Elasticsearch hydration ---
	var directory *symbols.Directory
	if cfg.Symbols.Source == "elasticsearch" {
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

		directory, err = symbols.LoadFromElasticsearch(ctx, esClient.Client, cfg.Symbols.Index, cfg.Symbols.MaxDocs)
		if err != nil {
			zapLog.Fatal("symbol directory hydration failed", zap.Error(err))
		}
		zapLog.Info("Symbol directory hydrated from Elasticsearch", zap.Int("symbols", directory.Size()))
	} else {
		directory = symbols.NewStatic()
		zapLog.Info("Symbol directory loaded from static table", zap.Int("symbols", directory.Size()))
	}

	// --- Market data collaborator ---
	var data finance.Collaborator
	if cfg.FinanceAPI.BaseURL != "" {
		data = finance.NewClient(
			&finance.Config{
				BaseURL:    cfg.FinanceAPI.BaseURL,
				APIKey:     cfg.FinanceAPI.APIKey,
				Timeout:    config.GetDuration(cfg.FinanceAPI.Timeout),
				MaxRetries: cfg.FinanceAPI.MaxRetries,
			},
			&financeLoggerAdapter{log},
		)
		zapLog.Info("Market data client initialized", zap.String("baseURL", cfg.FinanceAPI.BaseURL))
	} else {
		data = &finance.Stub{}
		zapLog.Warn("No finance API configured, serving stubbed market data")
	}

	// --- Dialogue engine ---
	manager := dialogue.NewManager(
		extractor.New(directory),
		classifier.New(classifier.Config{
			Threshold:   cfg.Engine.ConfidenceThreshold,
			EntityBonus: cfg.Engine.EntityBonus,
		}),
		data,
		dialogue.Config{EntityHistorySize: cfg.Engine.EntityHistorySize},
		&dialogueLoggerAdapter{log},
	)

	contexts := contextstore.NewRedisStore(redis.Client, config.GetDuration(cfg.Engine.ContextTTL))

	var turns *history.Store
	if pg != nil {
		turns = history.NewStore(pg.DB, log)
	}

	srv := &chatServer{
		manager:  manager,
		contexts: contexts,
		history:  turns,
		errors:   commonerrors.NewErrorHandler(log),
		logger:   log.WithFields(map[string]interface{}{"component": "chat-server"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chat/message", srv.handleMessage)
	mux.HandleFunc("/api/v1/chat/history", srv.handleHistory)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}

	go func() {
		zapLog.Info("Chat server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during shutdown", zap.Error(err))
	}

	zapLog.Info("Chat server stopped gracefully")
}

// ==========================
// HTTP Handlers
// ==========================

type messageRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}

// lockStripes bounds the lock table; conversations hashing to the same
// stripe share a mutex, which over-serializes but never leaks memory.
const lockStripes = 64

type chatServer struct {
	manager  *dialogue.Manager
	contexts contextstore.Store
	history  *history.Store
	errors   *commonerrors.ErrorHandler
	logger   logger.Logger

	locks [lockStripes]sync.Mutex
}

// conversationLock serializes turns within one conversation so the
// load-process-save cycle never interleaves.
func (s *chatServer) conversationLock(conversationID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(conversationID))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *chatServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errors.WriteHTTPError(w, req.ConversationID, commonerrors.NewInvalidMessageError("request body is not valid JSON"))
		return
	}
	if req.ConversationID == "" {
		s.errors.WriteHTTPError(w, "", commonerrors.NewInvalidMessageError("conversationId is required"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.errors.WriteHTTPError(w, req.ConversationID, commonerrors.NewInvalidMessageError("message is required"))
		return
	}

	lock := s.conversationLock(req.ConversationID)
	lock.Lock()
	defer lock.Unlock()

	metrics.ActiveConversations.Inc()
	defer metrics.ActiveConversations.Dec()

	ctx := r.Context()

	prior, err := s.contexts.Load(ctx, req.ConversationID)
	if err != nil {
		s.errors.WriteHTTPError(w, req.ConversationID, err)
		return
	}

	utterance := models.Utterance{
		ConversationID: req.ConversationID,
		Text:           req.Message,
		Timestamp:      time.Now().UTC(),
	}

	start := time.Now()
	result := s.manager.ProcessTurn(ctx, utterance, prior)
	elapsed := time.Since(start)

	metrics.TurnsProcessed.WithLabelValues(string(result.Intent), string(result.State)).Inc()
	metrics.TurnDuration.WithLabelValues(string(result.Intent)).Observe(elapsed.Seconds())
	if result.State == models.StateAwaitingSlot && result.Context != nil {
		metrics.SlotPrompts.WithLabelValues(string(result.Intent), result.Context.AwaitingSlot).Inc()
	}
	if result.State == models.StateFailed {
		metrics.TurnsFailed.WithLabelValues(string(result.Intent), "UNRECOGNIZED_INPUT").Inc()
	}
	if result.DataUnavailable {
		metrics.DataFetchFailures.WithLabelValues(string(result.Intent)).Inc()
	}

	if err := s.contexts.Save(ctx, req.ConversationID, result.Context); err != nil {
		s.errors.WriteHTTPError(w, req.ConversationID, err)
		return
	}

	// History is best effort; a write failure never fails the turn.
	if s.history != nil {
		if err := s.history.RecordTurn(ctx, utterance, result); err != nil {
			s.logger.Warn("history write failed", map[string]interface{}{
				"conversationId": req.ConversationID,
				"error":          err.Error(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

func (s *chatServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		http.Error(w, "chat history is not configured", http.StatusNotFound)
		return
	}

	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		s.errors.WriteHTTPError(w, "", commonerrors.NewInvalidMessageError("conversationId is required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	records, err := s.history.Recent(r.Context(), conversationID, limit)
	if err != nil {
		s.errors.WriteHTTPError(w, conversationID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"conversationId": conversationID,
		"turns":          records,
	})
}

// Logger adapters for packages that declare their own Logger interfaces
type dialogueLoggerAdapter struct {
	logger.Logger
}

func (a *dialogueLoggerAdapter) With(fields map[string]interface{}) dialogue.Logger {
	return &dialogueLoggerAdapter{a.Logger.With(fields)}
}

type financeLoggerAdapter struct {
	logger.Logger
}

func (a *financeLoggerAdapter) With(fields map[string]interface{}) finance.Logger {
	return &financeLoggerAdapter{a.Logger.With(fields)}
}

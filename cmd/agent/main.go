package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"reservation-agent/internal/analytics"
	"reservation-agent/internal/booking"
	"reservation-agent/internal/config"
	"reservation-agent/internal/events"
	"reservation-agent/internal/llm"
	"reservation-agent/internal/store"
	"reservation-agent/internal/summary"
	"reservation-agent/internal/tools"
	"reservation-agent/internal/voice"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// store: postgres when configured, in-memory otherwise
	var st store.Store
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		st = store.NewMemory()
	} else {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db", zap.Error(err))
		}
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		logger.Info("connected to postgres")

		// run migrations
		if migration, err := os.ReadFile(cfg.MigrateFile); err != nil {
			logger.Warn("migration file not found, skipping", zap.Error(err))
		} else if _, err := pool.Exec(ctx, string(migration)); err != nil {
			logger.Warn("migration", zap.Error(err))
		} else {
			logger.Info("migration applied")
		}
		st = store.NewPostgres(pool)
	}
	defer st.Close()

	// event broker is optional
	var pub *events.Publisher
	if cfg.AmqpURL != "" {
		pub, err = events.NewPublisher(cfg.AmqpURL, cfg.AmqpExchange, logger)
		if err != nil {
			logger.Warn("event publisher unavailable, continuing without", zap.Error(err))
			pub = nil
		} else {
			defer pub.Close()
		}
	}

	svc := booking.New(st, nil, pub, logger)

	disp := tools.NewDispatcher(svc, logger)
	sum := summary.New(summaryLLM(ctx, cfg, logger), svc, logger)

	agent := voice.NewAgent(voice.RealtimeConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.RealtimeModel,
		Voice:  cfg.RealtimeVoice,
	}, disp, sum, cfg.JWTSecret, logger)

	api := analytics.NewServer(st, agent, cfg, logger)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}
	go func() {
		logger.Info("http listening", zap.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http", zap.Error(err))
		}
	}()

	// mark bookings whose end time has passed
	sweepCtx, stopSweep := context.WithCancel(ctx)
	go sweepCompleted(sweepCtx, svc, logger)

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	logger.Info("shutting down")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// summaryLLM builds the text completion client for call summaries:
// OpenAI first, Gemini as fallback, nil when neither is configured.
func summaryLLM(ctx context.Context, cfg config.Config, logger *zap.Logger) llm.Client {
	var openai, gemini llm.Client
	if cfg.OpenAIAPIKey != "" {
		openai = llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.GeminiAPIKey != "" {
		g, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini client unavailable", zap.Error(err))
		} else {
			gemini = g
		}
	}
	switch {
	case openai != nil && gemini != nil:
		return llm.NewFailover(openai, gemini, logger)
	case openai != nil:
		return openai
	case gemini != nil:
		return gemini
	default:
		logger.Warn("no LLM configured, summaries fall back to plain records")
		return nil
	}
}

func sweepCompleted(ctx context.Context, svc *booking.Service, logger *zap.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := svc.CompletePast(ctx); err != nil {
				logger.Warn("complete sweep", zap.Error(err))
			} else if n > 0 {
				logger.Info("bookings completed", zap.Int64("count", n))
			}
		}
	}
}

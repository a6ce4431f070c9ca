// cmd/intake-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	awsclients "logistics-intake/internal/common/aws"
	"logistics-intake/internal/common/config"
	"logistics-intake/internal/common/database"
	"logistics-intake/internal/common/logger"
	"logistics-intake/internal/common/observability"
	"logistics-intake/internal/intake/conversation"
	"logistics-intake/internal/intake/gate"
	"logistics-intake/internal/intake/memory"
	"logistics-intake/internal/intake/provider"
	"logistics-intake/internal/intake/rules"
	"logistics-intake/internal/notify"
	"logistics-intake/internal/report"
	"logistics-intake/internal/server"
	"logistics-intake/internal/storage/postgres"
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting intake server...",
		zap.String("environment", cfg.App.Environment),
		zap.Bool("botEnabled", cfg.App.BotEnabled),
	)

	obs := observability.New("intake-server")
	defer obs.Shutdown()

	ctx := context.Background()

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

	// --- Conversation memory backend ---
	var convMemory memory.Store
	switch cfg.Memory.Backend {
	case "redis":
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		convMemory = memory.NewRedisStore(rdb.GetClient(), time.Duration(cfg.Memory.TTL)*time.Second)
	default:
		convMemory = memory.NewInMemStore()
	}

	// --- Repositories ---
	orderRepo := postgres.NewOrderRepository(pg)
	fleetRepo := postgres.NewFleetRepository(pg)

	// --- Provider chain + admission gate ---
	groq := provider.NewGroqClient(provider.Config{
		BaseURL:        cfg.Groq.BaseURL,
		APIKey:         cfg.Groq.APIKey,
		RequestTimeout: time.Duration(cfg.Groq.RequestTimeout) * time.Second,
		ConnectTimeout: time.Duration(cfg.Groq.ConnectTimeout) * time.Second,
	})
	chain := provider.NewChain(cfg.Groq.Models, groq, log)
	admission := gate.New(cfg.Groq.MaxConcurrent, time.Duration(cfg.Groq.QueueTimeout)*time.Second)

	// --- Optional dispatch notifications ---
	var notifier conversation.Notifier
	if cfg.Notifications.AWS.SES.Enabled || cfg.Notifications.AWS.SNS.Enabled {
		var email notify.EmailSender
		var sms notify.SMSPublisher

		if cfg.Notifications.AWS.SES.Enabled {
			sesClient, err := awsclients.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("SES client init failed", zap.Error(err))
			}
			email = sesClient
		}
		if cfg.Notifications.AWS.SNS.Enabled {
			snsClient, err := awsclients.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("SNS client init failed", zap.Error(err))
			}
			sms = snsClient
		}

		notifier = notify.New(cfg.Notifications, email, sms, log)
		zapLog.Info("Dispatch notifications enabled",
			zap.Bool("ses", cfg.Notifications.AWS.SES.Enabled),
			zap.Bool("sns", cfg.Notifications.AWS.SNS.Enabled),
		)
	}

	// --- Conversation engine ---
	engine := conversation.NewEngine(conversation.Deps{
		Gate:       admission,
		Chain:      chain,
		Rules:      rules.NewEngine(log),
		Memory:     convMemory,
		Orders:     orderRepo,
		Notifier:   notifier,
		Obs:        obs,
		Logger:     log,
		BotEnabled: cfg.App.BotEnabled,
	})

	// --- HTTP server ---
	srv := server.New(server.Options{
		Chat:            engine,
		Orders:          orderRepo,
		Fleet:           fleetRepo,
		Report:          report.NewService(orderRepo),
		WhatsappAPIURL:  cfg.Whatsapp.APIURL,
		WhatsappTimeout: time.Duration(cfg.Whatsapp.Timeout) * time.Second,
		Logger:          log,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}

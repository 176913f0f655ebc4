package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cogitto/cogitto-api/assistant"
	"github.com/cogitto/cogitto-api/chat"
	"github.com/cogitto/cogitto-api/config"
	"github.com/cogitto/cogitto-api/data"
	"github.com/cogitto/cogitto-api/engine"
	"github.com/cogitto/cogitto-api/handlers"
	"github.com/cogitto/cogitto-api/health"
	"github.com/cogitto/cogitto-api/llm"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/refdata"
	"github.com/cogitto/cogitto-api/scheduler"
	"github.com/cogitto/cogitto-api/server"
	"github.com/cogitto/cogitto-api/validation"
	"github.com/joho/godotenv"
)

func loadEnv() {
	// Get the working directory and read the env variables
	if err := godotenv.Load(); err == nil {
		return
	}

	// If failed, try loading from executable directory
	ex, err := os.Executable()
	if err != nil {
		slog.Error("Failed to get executable path", "error", err)
		os.Exit(1)
	}

	exPath := filepath.Dir(ex)
	if err := os.Chdir(exPath); err != nil {
		slog.Error("Failed to change directory", "error", err)
		os.Exit(1)
	}

	// Still optional: the environment may already carry every variable
	_ = godotenv.Load()
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	container := data.NewDataContainer()
	container.SetServerStartTime(time.Now())

	generator := llm.NewFromConfig(cfg)
	if generator == nil {
		logging.Warn("OPENAI_API_KEY not set, chat answers will use the local fallback")
	}

	orchestrator := assistant.NewOrchestrator(container, assistant.Options{
		Generator: generator,
		Timeout:   cfg.GenerationTimeout,
		MatchMode: engine.ParseMatchMode(cfg.MentionMatch),
		RiskPolicy: engine.RiskPolicy{
			HighRiskMedications: cfg.HighRiskMedications,
		},
	})
	chatService := chat.NewService(chat.NewStore(), orchestrator)

	sched := scheduler.NewScheduler(container, refdata.NewLoader(cfg.DataFile), chatService,
		scheduler.Options{SessionTTL: cfg.SessionTTL})
	if err := sched.Start(); err != nil {
		logging.Error("Startup failed", "error", err)
		os.Exit(1)
	}

	handler := handlers.NewHTTPHandler(container, validation.NewDataValidator(), orchestrator, chatService,
		health.NewHealthChecker(container, orchestrator.GenerationEnabled(), chatService))
	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
	}
}

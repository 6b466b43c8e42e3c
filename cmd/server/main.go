package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/linguaflow/tutor-apiserver/internal/config"
	"github.com/linguaflow/tutor-apiserver/internal/handler"
	infradb "github.com/linguaflow/tutor-apiserver/internal/infrastructure/database"
	"github.com/linguaflow/tutor-apiserver/internal/infrastructure/elevenlabs"
	"github.com/linguaflow/tutor-apiserver/internal/infrastructure/openai"
	"github.com/linguaflow/tutor-apiserver/internal/router"
	"github.com/linguaflow/tutor-apiserver/internal/usecase"
	dbpkg "github.com/linguaflow/tutor-apiserver/pkg/database"
	"github.com/linguaflow/tutor-apiserver/pkg/logger"
)

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "tutor-apiserver",
	Short: "API server for the language-learning tutor",
	Long: `tutor-apiserver backs the mobile language-learning tutor. It relays
streaming chat completions from the AI provider, synthesizes speech through
ElevenLabs, and persists tutoring sessions and feedback.`,
	Version: version,
	Run:     runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	// Best-effort .env load for local development; real deployments use
	// TUTOR_* environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	slog.Info("tutor api server starting",
		"version", version,
		"config", cfgFile,
	)

	// Route Hertz's own logging through slog
	hlog.SetLogger(logger.NewHertzSlogAdapter(slog.Default()))

	// Database
	dbClient, err := dbpkg.NewClient(cfg.Database, infradb.Models(), slog.Default())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	chatRepo := infradb.NewChatRepository(dbClient)
	feedbackRepo := infradb.NewFeedbackRepository(dbClient)

	// Provider clients are process-wide singletons configured once here.
	llmClient := openai.NewClient(cfg.OpenAI, slog.Default())
	ttsClient := elevenlabs.NewClient(cfg.ElevenLabs, slog.Default())

	chatUsecase := usecase.NewChatUsecase(llmClient, chatRepo, slog.Default())
	speechUsecase := usecase.NewSpeechUsecase(ttsClient, slog.Default())
	feedbackUsecase := usecase.NewFeedbackUsecase(feedbackRepo, chatRepo, slog.Default())

	chatHandler := handler.NewChatHandler(chatUsecase, slog.Default())
	speechHandler := handler.NewSpeechHandler(speechUsecase, slog.Default())
	sessionHandler := handler.NewSessionHandler(chatUsecase, slog.Default())
	feedbackHandler := handler.NewFeedbackHandler(feedbackUsecase, slog.Default())
	healthHandler := handler.NewHealthHandler(dbClient)

	slog.Info("handlers initialized")

	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.Server.ReadTimeout),
		server.WithWriteTimeout(cfg.Server.WriteTimeout),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize*1024*1024),
		server.WithTransport(netpoll.NewTransporter),
	)

	router.Setup(h, chatHandler, speechHandler, sessionHandler, feedbackHandler, healthHandler)

	slog.Info("server started",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
	)

	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	if err := dbpkg.Close(dbClient, slog.Default()); err != nil {
		slog.Error("failed to close database", "error", err)
	}

	slog.Info("server stopped gracefully")
}

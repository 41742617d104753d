package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/claritylabs/clarity/backend/internal/analysis/emotion"
	"github.com/claritylabs/clarity/backend/internal/analysis/pattern"
	"github.com/claritylabs/clarity/backend/internal/analysis/topic"
	"github.com/claritylabs/clarity/backend/internal/config"
	"github.com/claritylabs/clarity/backend/internal/embedding"
	"github.com/claritylabs/clarity/backend/internal/handler"
	"github.com/claritylabs/clarity/backend/internal/logger"
	"github.com/claritylabs/clarity/backend/internal/service/ai"
	"github.com/claritylabs/clarity/backend/internal/service/chat"
	"github.com/claritylabs/clarity/backend/internal/service/retrieval"
	"github.com/claritylabs/clarity/backend/internal/service/therapy"
	"github.com/claritylabs/clarity/backend/internal/vectorstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLog, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	embedder, err := embedding.NewEngine(cfg.Embedding)
	if err != nil {
		appLog.Fatal("failed to initialize embedding engine", "error", err)
	}
	appLog.Info("embedding engine ready", "provider", embedder.Name())

	if dir := filepath.Dir(cfg.Store.VectorDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			appLog.Fatal("failed to create data directory", "dir", dir, "error", err)
		}
	}
	index, err := vectorstore.Open(cfg.Store.VectorDBPath)
	if err != nil {
		appLog.Fatal("failed to open vector index", "path", cfg.Store.VectorDBPath, "error", err)
	}
	defer index.Close()

	var topicClassifier topic.Classifier
	if cfg.Store.TopicModelPath != "" {
		clusters, err := topic.LoadClusters(cfg.Store.TopicModelPath)
		if err != nil {
			appLog.Warn("topic model unavailable, classifying as unknown", "path", cfg.Store.TopicModelPath, "error", err)
		} else {
			topicClassifier = topic.NewCentroidClassifier(embedder, clusters)
			appLog.Info("topic model loaded", "clusters", len(clusters))
		}
	}

	chatService := chat.NewService()
	retrievalService := retrieval.NewService(index, embedder, appLog)

	var generator therapy.Generator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, appLog)
		if err != nil {
			appLog.Warn("AI service unavailable, replies fall back to the fixed response", "error", err)
		} else {
			generator = aiService
			appLog.Info("AI service initialized")
		}
	} else {
		appLog.Info("Ark credentials not configured, replies fall back to the fixed response")
	}

	therapyService := therapy.NewService(
		pattern.NewDetector(pattern.DefaultCatalog()),
		emotion.NewClassifier(),
		topicClassifier,
		retrievalService,
		generator,
		chatService,
		index,
		embedder,
		appLog,
		therapy.Options{HistoryLimit: cfg.Chat.HistoryLimit},
	)

	router := handler.NewRouter(therapyService, chatService, appLog)

	startServer(ctx, cfg.Server, router, appLog)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, appLog *logger.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	appLog.Info("clarity backend listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		appLog.Fatal("server error", "error", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

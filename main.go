package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"bims-inspector/config"
	"bims-inspector/dataset"
	"bims-inspector/inspection"
	"bims-inspector/providers"
	"bims-inspector/pubsub"
	"bims-inspector/server"
	"bims-inspector/vector"
	"bims-inspector/vision"
)

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	primary, err := providers.NewChatModel(ctx, &providers.ChatModelConfig{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GroqModel,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create primary chat model")
	}

	secondary, err := providers.NewGeminiModel(ctx, &providers.GeminiConfig{
		APIKey: cfg.GoogleAPIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create secondary chat model")
	}

	embedder, err := providers.NewEmbeddingModel(ctx, &providers.EmbeddingConfig{
		APIKey:  cfg.EmbeddingAPIKey,
		BaseURL: cfg.EmbeddingBaseURL,
		Model:   cfg.EmbeddingModel,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create embedding model")
	}

	// Process-wide singletons, shared by every request.
	embeddingSvc := vector.NewEmbeddingService(embedder, cfg.EmbeddingDim)

	index, err := vector.NewRedisStore(ctx, embeddingSvc, vector.RedisConfig{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		IndexName: cfg.IndexName,
		KeyPrefix: cfg.KeyPrefix,
		VectorDim: cfg.EmbeddingDim,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to open reference index")
	}
	defer index.Close()

	if count, err := index.Count(ctx); err == nil {
		logrus.WithField("references", count).Info("reference index ready")
	}
	if pending, err := dataset.CountPending(cfg.DatasetDir); err == nil {
		logrus.WithField("pending", pending).Info("dataset records awaiting verification")
	}

	broker := pubsub.NewBroker[inspection.Record]()
	defer broker.Shutdown()

	writer := dataset.NewWriter(cfg.DatasetDir, broker)
	go writer.Run(ctx)

	svc := inspection.NewService(
		vision.NewStore(cfg.ImagesDir),
		index,
		inspection.NewFailoverAnalyzer(primary, secondary),
		broker,
	)

	srv := server.New(cfg.ListenAddr, svc)

	go func() {
		logrus.WithField("addr", cfg.ListenAddr).Info("inspector listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
	}
}

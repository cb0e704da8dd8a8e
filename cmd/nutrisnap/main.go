package main

import (
	"log"
	"log/slog"

	"github.com/dprayogo/nutrisnap/internal/analyzer"
	"github.com/dprayogo/nutrisnap/internal/config"
	"github.com/dprayogo/nutrisnap/internal/db"
	"github.com/dprayogo/nutrisnap/internal/logging"
	"github.com/dprayogo/nutrisnap/internal/mediastore/local"
	"github.com/dprayogo/nutrisnap/internal/nutrition"
	"github.com/dprayogo/nutrisnap/internal/openrouter"
	"github.com/dprayogo/nutrisnap/internal/store"
	"github.com/dprayogo/nutrisnap/internal/transcribe"
	"github.com/dprayogo/nutrisnap/internal/vision"
	claudevision "github.com/dprayogo/nutrisnap/internal/vision/claude"
	openroutervision "github.com/dprayogo/nutrisnap/internal/vision/openrouter"
	"github.com/dprayogo/nutrisnap/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if cfg.OpenRouterAPIKey == "" {
		logger.Error("OPENROUTER_API_KEY is required")
		return
	}
	if cfg.AssemblyAIAPIKey == "" {
		logger.Error("ASSEMBLYAI_API_KEY is required")
		return
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	chatClient := newChatClient(cfg)
	extractor := newFoodExtractor(cfg, chatClient, logger)
	if extractor == nil {
		return
	}
	estimator := nutrition.NewOpenRouterEstimator(chatClient, cfg.NutritionModel)

	transcriber := transcribe.NewClient(cfg.AssemblyAIAPIKey, cfg.TranscribeLanguage, logger)
	transcriber.PollInterval = cfg.TranscribePollInterval
	transcriber.MaxWait = cfg.TranscribeMaxWait

	mediaStg, err := local.NewLocalMediaStore(cfg.MediaPath)
	if err != nil {
		logger.Error("failed to initialize media store", "error", err)
		return
	}

	analysisStore := store.NewAnalysisStore(database)
	service := analyzer.NewService(extractor, estimator, transcriber, analysisStore, mediaStg, logger)
	server := web.NewServer(service, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newChatClient(cfg *config.Config) *openrouter.Client {
	if cfg.OpenRouterBaseURL != "" {
		return openrouter.NewClientWithBaseURL(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL)
	}
	return openrouter.NewClient(cfg.OpenRouterAPIKey)
}

func newFoodExtractor(cfg *config.Config, chatClient *openrouter.Client, logger *slog.Logger) vision.FoodExtractor {
	switch cfg.VisionBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Error("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
			return nil
		}
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewExtractor(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	default:
		logger.Info("using OpenRouter vision backend", "model", cfg.VisionModel)
		return openroutervision.NewExtractor(chatClient, cfg.VisionModel)
	}
}

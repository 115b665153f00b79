package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"github.com/studyhelper/studyhelper/community"
	"github.com/studyhelper/studyhelper/config"
	"github.com/studyhelper/studyhelper/extractor"
	"github.com/studyhelper/studyhelper/handlers"
	"github.com/studyhelper/studyhelper/llm_service"
	"github.com/studyhelper/studyhelper/logging"
	"github.com/studyhelper/studyhelper/pipeline"
	"github.com/studyhelper/studyhelper/plugin_registry"
	"github.com/studyhelper/studyhelper/server"
	"github.com/studyhelper/studyhelper/session"
)

func main() {
	cfg := config.Load()

	logger, err := initLogger(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Provider wiring: OpenAI primary, Gemini secondary, per-call fallback.
	openai := llm_service.NewOpenAIService(llm_service.OpenAIConfig{
		APIURL: cfg.OpenAIAPIURL,
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	}, logger)
	gemini := llm_service.NewGeminiService(llm_service.GeminiConfig{
		APIURL: cfg.GeminiAPIURL,
		APIKey: cfg.GeminiAPIKey,
	}, logger)

	forceSecondary := cfg.UseGeminiAlways || cfg.OpenAIAPIKey == ""
	if forceSecondary {
		logger.Warn("OpenAI is unavailable or disabled, all generative calls will use Gemini")
	}
	fallback := llm_service.NewFallbackService(openai, gemini, logger, forceSecondary)

	registry := plugin_registry.NewPluginRegistry()
	registry.RegisterLLMService("openai", openai)
	registry.RegisterLLMService("gemini", gemini)
	registry.RegisterLLMService("default", fallback)
	registerStepTypes(registry, cfg, logger)

	// Stores are explicit handles owned here and passed to the handlers.
	reports := pipeline.NewReportStore(logger)
	reports.StartCleanup(cfg.ReportRetention, cfg.CleanupInterval)
	sessions := session.NewStore()
	board := community.NewBoard()

	chatService, ok := registry.GetLLMService("default")
	if !ok {
		log.Fatal("Default LLM service is not registered")
	}

	analyzeHandler := handlers.NewAnalyzeHandler(registry, reports, sessions, logger)
	chatHandler := handlers.NewChatHandler(chatService, sessions, cfg.Temperature, logger)
	communityHandler := handlers.NewCommunityHandler(board, logger)

	r := server.SetupRoutes(analyzeHandler, chatHandler, communityHandler)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg.Domains, cfg.CertCacheDir)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 120 * time.Second,
		}
		logger.Info("Starting server", slog.String("port", cfg.HTTPPort))
		server.ServeDevelopment(srv)
	}
}

func initLogger(logDir string) (*slog.Logger, error) {
	handler, err := logging.NewDailyFileHandler(logDir, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

func registerStepTypes(registry *plugin_registry.PluginRegistry, cfg config.Config, logger *slog.Logger) {
	docExtractor := extractor.NewDocumentExtractor(logger)

	llmService, ok := registry.GetLLMService("default")
	if !ok {
		log.Fatal("Default LLM service is not registered")
	}

	registry.RegisterStepType("extract_step", func() pipeline.Step {
		return &pipeline.ExtractStepImpl{
			Extractor: docExtractor,
			Workers:   cfg.ExtractWorkers,
			Logger:    logger,
		}
	})

	registry.RegisterStepType("chunk_summary_step", func() pipeline.Step {
		return &pipeline.ChunkSummaryStepImpl{
			LLMServiceInstance: llmService,
			ChunkMaxChars:      cfg.ChunkMaxChars,
			Temperature:        cfg.Temperature,
			Logger:             logger,
		}
	})

	registry.RegisterStepType("aggregate_step", func() pipeline.Step {
		return &pipeline.AggregateStepImpl{
			LLMServiceInstance:  llmService,
			SalientSentences:    cfg.SalientSentences,
			ClarifyingQuestions: cfg.ClarifyingQuestions,
			Temperature:         cfg.Temperature,
			Logger:              logger,
		}
	})
}

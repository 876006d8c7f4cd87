package bootstrap

import (
	"context"
	"log"

	"rfp-analysis-be/internal/config"
	"rfp-analysis-be/internal/controller"
	"rfp-analysis-be/internal/handler"
	"rfp-analysis-be/internal/pkg/logger"
	"rfp-analysis-be/internal/repository/memory"
	"rfp-analysis-be/internal/repository/unitofwork"
	"rfp-analysis-be/internal/service"
	internalWS "rfp-analysis-be/internal/websocket"
	"rfp-analysis-be/pkg/chunker"
	"rfp-analysis-be/pkg/embedding"
	openaiEmbedding "rfp-analysis-be/pkg/embedding/openai"
	"rfp-analysis-be/pkg/extract"
	"rfp-analysis-be/pkg/llm/factory"
	"rfp-analysis-be/pkg/websearch"

	pktNats "rfp-analysis-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	RfpController      controller.IRfpController
	AnalysisController controller.IAnalysisController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Event Fan-out
	EventHandler *handler.EventHandler
	WebSocketHub *internalWS.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = openaiEmbedding.NewProvider(cfg.Keys.OpenAI, cfg.Ai.LLMBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	searcher := websearch.NewSerperClient(cfg.Keys.Serper)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/session_events.log")
	wsHub := internalWS.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Domain Components
	extractionCache := memory.NewExtractionCache()
	splitter := chunker.NewSplitter(cfg.Analysis.ChunkSentences, cfg.Analysis.ChunkOverlap)
	templateLoader := extract.NewTemplateLoader(cfg.Analysis.TemplateDir, log.Default())

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.IngestTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
	)

	indexService := service.NewIndexService(uowFactory, cfg.Index, cfg.Ai.EmbeddingModel, sysLogger)
	documentService := service.NewDocumentService(
		indexService,
		publisherService,
		extractionCache,
		splitter,
		natsPub,
		sysLogger,
	)
	extractionService := service.NewExtractionService(
		indexService,
		embeddingProvider,
		llmProvider,
		templateLoader,
		extractionCache,
		cfg.Ai,
		cfg.Analysis.ExtractionTopK,
		sysLogger,
	)
	chatService := service.NewChatService(
		indexService,
		embeddingProvider,
		llmProvider,
		cfg.Ai.Temperature,
		cfg.Analysis.ChatTopK,
	)
	analysisService := service.NewAnalysisService(
		indexService,
		uowFactory,
		embeddingProvider,
		llmProvider,
		searcher,
		natsPub,
		cfg.Ai,
		cfg.Analysis,
		sysLogger,
		log.Default(),
	)

	// 7. Event Fan-out
	eventHandler := handler.NewEventHandler(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go eventHandler.Start()
	}

	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		RfpController:      controller.NewRfpController(extractionService, chatService, analysisService, cfg.Index.ReferenceIndex),
		AnalysisController: controller.NewAnalysisController(analysisService),

		ConsumerService: consumerService,

		EventHandler: eventHandler,
		WebSocketHub: wsHub,
	}
}

package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-research-be/internal/config"
	"ai-research-be/internal/controller"
	"ai-research-be/internal/handler"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/implementation"
	"ai-research-be/internal/repository/inflight"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/internal/service"
	"ai-research-be/internal/websocket"
	"ai-research-be/pkg/agents"
	"ai-research-be/pkg/arxiv"
	"ai-research-be/pkg/llm/factory"

	pktNats "ai-research-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	OAuthController      controller.IOAuthController
	ResearcherController controller.IResearcherController
	SessionController    controller.ISessionController
	PipelineController   controller.IPipelineController
	UploadController     controller.IUploadController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
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

	// 3. Generation Backend
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	arxivClient := arxiv.NewClient(cfg.Pipeline.ArxivBaseURL)
	agentRegistry := agents.NewDefaultRegistry(llmProvider, arxivClient, cfg.Pipeline.MaxSearchResults)

	// 3.5 Infrastructure
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
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisUp = false
	}

	// In-flight guard: Redis SETNX when Redis is reachable so double-submits
	// are deduplicated across instances, in-process cache otherwise. The TTL
	// backstops a crashed execution that never released its slot.
	guardTTL := cfg.Pipeline.StepTimeout + 30*time.Second
	var guard inflight.ExecutionGuard
	if redisUp {
		guard = inflight.NewRedisGuard(rdb, guardTTL)
		log.Printf("[INFO] Using Redis in-flight guard")
	} else {
		guard = inflight.NewMemoryGuard(guardTTL)
		log.Printf("[INFO] Using in-memory in-flight guard")
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Pipeline.EventsTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Pipeline.EventsTopic,
		uowFactory,
		natsPub,
	)

	authService := service.NewAuthService(uowFactory)
	oauthService := service.NewOAuthService(uowFactory)
	researcherService := service.NewResearcherService(uowFactory)

	sessionService := service.NewSessionService(uowFactory, publisherService, sysLogger, cfg.App.UploadDir)
	pipelineService := service.NewPipelineService(
		uowFactory,
		agentRegistry,
		guard,
		publisherService,
		sysLogger,
		cfg.Pipeline.StepTimeout,
	)
	feedbackService := service.NewFeedbackService(uowFactory)
	uploadService := service.NewUploadService(
		uowFactory,
		agentRegistry,
		publisherService,
		sysLogger,
		cfg.App.UploadDir,
		cfg.Pipeline.UploadMaxBytes,
		cfg.Pipeline.StepTimeout,
	)

	// 4.5 Notification System
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger)

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, natsPub, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		AuthController:       controller.NewAuthController(authService),
		OAuthController:      controller.NewOAuthController(oauthService),
		ResearcherController: controller.NewResearcherController(researcherService),
		SessionController:    controller.NewSessionController(sessionService),
		PipelineController:   controller.NewPipelineController(pipelineService, feedbackService),
		UploadController:     controller.NewUploadController(uploadService),

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		ConsumerService: consumerService,
	}
}

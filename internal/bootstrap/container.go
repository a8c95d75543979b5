package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-invoicing-be/internal/config"
	"ai-invoicing-be/internal/controller"
	"ai-invoicing-be/internal/pkg/bot"
	"ai-invoicing-be/internal/pkg/logger"
	"ai-invoicing-be/internal/pkg/mailer"
	"ai-invoicing-be/internal/repository/memory"
	"ai-invoicing-be/internal/repository/redisstore"
	"ai-invoicing-be/internal/repository/unitofwork"
	"ai-invoicing-be/internal/service"
	"ai-invoicing-be/pkg/conversation"
	"ai-invoicing-be/pkg/dispatch"
	"ai-invoicing-be/pkg/intent"
	"ai-invoicing-be/pkg/llm"
	"ai-invoicing-be/pkg/llm/factory"

	pktNats "ai-invoicing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	WebhookController  controller.IWebhookController
	DocumentController controller.IDocumentController
	ClientController   controller.IClientController
	ScheduleController controller.IScheduleController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	WebhookService   service.IWebhookService
	RecurringService service.IRecurringService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Intent Parser Backends
	// The primary backend is tried first, the fallback (when configured)
	// second. The rule-based extractor inside the parser covers the case
	// where every backend is down.
	var backends []llm.LLMProvider
	primary, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Printf("[WARN] Failed to initialize primary LLM provider: %v", err)
	} else {
		backends = append(backends, primary)
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)
	}
	if cfg.Ai.FallbackProvider != "" {
		fallback, err := factory.NewLLMProvider(
			cfg.Ai.FallbackProvider,
			cfg.Ai.FallbackModel,
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OpenAIAPIKey,
		)
		if err != nil {
			log.Printf("[WARN] Failed to initialize fallback LLM provider: %v", err)
		} else {
			backends = append(backends, fallback)
			log.Printf("[INFO] Using Fallback LLM Provider: %s (%s)", cfg.Ai.FallbackProvider, cfg.Ai.FallbackModel)
		}
	}

	parser := intent.NewParser(backends, time.Duration(cfg.Ai.TimeoutSeconds)*time.Second, sysLogger)

	// 4. Session Storage
	// The repository doubles as the per-session locker so that turns stay
	// serialized wherever the sessions actually live.
	var sessionStore conversation.Store
	var sessionLocker conversation.Locker
	if cfg.App.SessionStore == "redis" {
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
		repo := redisstore.NewSessionRepository(rdb)
		sessionStore, sessionLocker = repo, repo
	} else {
		repo := memory.NewSessionRepository()
		sessionStore, sessionLocker = repo, repo
	}

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// 6. Services
	publisherService := service.NewPublisherService(pubSub)
	consumerService := service.NewConsumerService(pubSub, emailService, sysLogger)

	dispatcher := dispatch.NewDispatcher(uowFactory, publisherService, sysLogger)

	assistantService := service.NewAssistantService(
		parser,
		sessionStore,
		sessionLocker,
		dispatcher,
		uowFactory,
		sysLogger,
	)

	botTransport := bot.NewHTTPTransport(cfg.Webhook.OutboundURL, sysLogger)
	webhookLogger := logger.NewIsolatedLogger("logs/webhook.log")
	webhookService := service.NewWebhookService(
		cfg.Webhook.Secret,
		uowFactory,
		natsPub,
		natsSub,
		assistantService,
		botTransport,
		webhookLogger,
	)

	documentService := service.NewDocumentService(uowFactory, dispatcher)
	scheduleService := service.NewScheduleService(uowFactory)
	recurringService := service.NewRecurringService(uowFactory, dispatcher, sysLogger)

	// 7. Controllers
	return &Container{
		ChatController:     controller.NewChatController(assistantService),
		WebhookController:  controller.NewWebhookController(webhookService),
		DocumentController: controller.NewDocumentController(documentService),
		ClientController:   controller.NewClientController(documentService),
		ScheduleController: controller.NewScheduleController(scheduleService),

		ConsumerService:  consumerService,
		WebhookService:   webhookService,
		RecurringService: recurringService,
	}
}

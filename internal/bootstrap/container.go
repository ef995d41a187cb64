package bootstrap

import (
	"context"
	"log"
	"strings"

	"case-portal-be/internal/config"
	"case-portal-be/internal/controller"
	"case-portal-be/internal/handler"
	"case-portal-be/internal/pkg/logger"
	"case-portal-be/internal/pkg/mailer"
	"case-portal-be/internal/repository/memory"
	"case-portal-be/internal/repository/redisstore"
	"case-portal-be/internal/repository/unitofwork"
	"case-portal-be/internal/service"
	"case-portal-be/internal/websocket"
	"case-portal-be/pkg/admin/dashboard"
	adminEvents "case-portal-be/pkg/admin/events"
	"case-portal-be/pkg/admin/user"
	"case-portal-be/pkg/aiservice"
	"case-portal-be/pkg/events"
	"case-portal-be/pkg/gate"
	"case-portal-be/pkg/ingest"
	"case-portal-be/pkg/session"
	"case-portal-be/pkg/storage"

	pktNats "case-portal-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	UserController     controller.IUserController
	AdminController    controller.IAdminController
	CaseController     controller.ICaseController
	DocumentController controller.IDocumentController
	AiController       controller.IAiController
	HealthController   *controller.HealthController

	// Request gate, mounted before every route
	Gate       *gate.Gate
	GateConfig gate.MiddlewareConfig

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Background workers (started by Start)
	coordinator   *session.Coordinator
	notifications *service.NotificationService
	sessionBus    *session.Bus

	Logger logger.ILogger

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
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
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}

	// Redis
	rdb := connectRedis(cfg.App.RedisURL)

	// 3. Session bus. Local changes go through watermill; NATS carries them to other instances.
	var forward events.Sink
	if natsPub != nil {
		forward = natsPub
	}
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	sessionBus := session.NewBus(pubSub, cfg.App.InstanceID, forward, sysLogger)

	var sessionStore session.Store
	if rdb != nil {
		sessionStore = redisstore.NewSessionRepository(rdb)
	} else {
		log.Printf("[WARN] Redis unavailable, sessions are kept in memory")
		sessionStore = memory.NewSessionRepository()
	}
	sessionManager := session.NewManager(cfg.Auth.JwtSecret, cfg.Auth.SessionTTL, sessionStore, sessionBus)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	wsHub := websocket.NewHub(rdb, cfg.App.InstanceID, wsLogger)

	// 4. Clients
	s3Client, err := storage.NewS3Client(context.Background(), storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize storage client: %v", err)
	}
	aiClient := aiservice.NewClient(cfg.Ai.BaseURL, cfg.Ai.Timeout)
	if cfg.Ai.BaseURL == "" {
		log.Printf("[WARN] AI_SERVICE_URL is empty, AI requests will fail as not configured")
	}

	// 5. Admin Domain Components
	adminEventPublisher := adminEvents.NewNatsPublisher(forward, sysLogger)
	userManager := user.NewManager(sysLogger, adminEventPublisher)
	dashboardAggregator := dashboard.NewAggregator(sysLogger)

	// 6. Services
	auditService := service.NewAuditService(uowFactory, sysLogger)
	userService := service.NewUserService(uowFactory)
	authService := service.NewAuthService(uowFactory, sessionManager, userManager, auditService, sysLogger)
	adminService := service.NewAdminService(
		uowFactory,
		sysLogger,
		userManager,
		dashboardAggregator,
		adminEventPublisher,
		sessionManager,
		emailService,
		auditService,
	)
	caseService := service.NewCaseService(uowFactory, auditService)

	tracker := ingest.NewTrackerWithRetention(cfg.Auth.SessionTTL)
	pipeline := ingest.NewPipeline(
		ingest.Config{Buckets: cfg.Storage.Buckets, MaxFileSize: cfg.Storage.MaxUpload},
		ingest.Deps{
			Sessions:  sessionManager,
			Objects:   s3Client,
			Documents: service.NewDocumentStore(uowFactory),
			Parser:    aiClient,
			Auditor:   auditService,
			Events:    forward,
			Tracker:   tracker,
			Logger:    sysLogger,
		},
	)
	documentService := service.NewDocumentService(
		uowFactory,
		pipeline,
		caseService,
		s3Client,
		wsHub,
		adminEventPublisher,
		auditService,
		sysLogger,
		service.DocumentServiceConfig{PresignTTL: cfg.Storage.PresignTTL, MaxFileSize: cfg.Storage.MaxUpload},
	)
	aiTaskService := service.NewAiTaskService(aiClient, caseService, auditService, sysLogger)

	// 7. Notification System
	var subscriber service.EventSubscriber
	if natsSub != nil {
		subscriber = natsSub
	}
	notifService := service.NewNotificationService(uowFactory, subscriber, wsHub, wsLogger)
	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	// 8. Session listeners. The coordinator is the bus's only subscriber.
	coordinator := session.NewCoordinator(sessionBus, sysLogger)
	coordinator.Register(tracker)
	coordinator.Register(wsHub)
	coordinator.Register(session.ListenerFunc(func(ctx context.Context, c session.Change) {
		sysLogger.Debug("SESSION", "Session change dispatched", map[string]interface{}{
			"type": string(c.Type), "user_id": c.UserID.String(), "session_id": c.SessionID, "origin": c.Origin,
		})
	}))

	// 9. Gate
	requestGate := gate.New(gate.Config{
		PublicPaths:    cfg.Gate.PublicPaths,
		PublicPrefixes: cfg.Gate.PublicPrefixes,
		Rules:          gate.DefaultRules(),
		RedirectTo:     cfg.Gate.RedirectTo,
	}, sessionManager, userService, sysLogger)

	return &Container{
		AuthController: controller.NewAuthController(authService, sessionManager, controller.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		}),
		UserController:     controller.NewUserController(userService),
		AdminController:    controller.NewAdminController(adminService, auditService),
		CaseController:     controller.NewCaseController(caseService, userService),
		DocumentController: controller.NewDocumentController(documentService, userService),
		AiController:       controller.NewAiController(aiTaskService, userService),
		HealthController:   controller.NewHealthController(),

		Gate: requestGate,
		GateConfig: gate.MiddlewareConfig{
			CookieName:   cfg.Auth.CookieName,
			SkipPrefixes: cfg.Gate.SkipPrefixes,
			APIPrefix:    "/api/",
		},

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		coordinator:   coordinator,
		notifications: notifService,
		sessionBus:    sessionBus,
		Logger:        sysLogger,

		natsPub: natsPub,
		natsSub: natsSub,
		rdb:     rdb,
	}
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context, instanceID string) {
	go c.WebSocketHub.Run(ctx)
	go func() {
		if err := c.coordinator.Run(ctx); err != nil {
			c.Logger.Error("SESSION", "Session coordinator stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	c.notifications.Start()

	if c.natsSub == nil {
		return
	}
	// Every instance needs its own consumer so each one sees every sign-out.
	durable := "session-bridge-" + durableSafe(instanceID)
	err := c.natsSub.Subscribe(pktNats.Subject(events.TypeSessionChanged), durable, func(ctx context.Context, e events.Event) error {
		change, err := session.ChangeFromEvent(e)
		if err != nil {
			c.Logger.Warn("SESSION", "Dropping malformed session change", map[string]interface{}{"error": err.Error()})
			return nil
		}
		return c.sessionBus.Inject(ctx, change)
	})
	if err != nil {
		c.Logger.Error("SESSION", "Failed to bridge session changes from NATS", map[string]interface{}{"error": err.Error()})
	}
}

func (c *Container) Close() {
	c.natsSub.Close()
	c.natsPub.Close()
	if err := c.sessionBus.Close(); err != nil {
		log.Printf("[WARN] Session bus close: %v", err)
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// durableSafe keeps the characters JetStream accepts in consumer names.
func durableSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "chat_relay_service/cmd/chat_service/docs" // 引入生成的 Swagger 文档
	"chat_relay_service/internal/api/router"
	chatapp "chat_relay_service/internal/chat/app"
	"chat_relay_service/internal/chat/hub"
	chatrepo "chat_relay_service/internal/chat/repository"
	memberapp "chat_relay_service/internal/member/app"
	memberdomain "chat_relay_service/internal/member/domain"
	memberrepo "chat_relay_service/internal/member/repository"
	"chat_relay_service/pkg/config"
	"chat_relay_service/pkg/database"
	"chat_relay_service/pkg/logger"
	"chat_relay_service/pkg/middlewares"
	testtool "chat_relay_service/pkg/test_tool"
	"chat_relay_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()

	cfg, err := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	if err != nil {
		logger.Log.Fatal("load config", zap.Error(err))
	}
	cfg.Normalize()
	cfg.ApplyRedisEnv()
	if cfg.Token.Secret == "" {
		logger.Log.Fatal("token.secret must be set")
	}
	if !config.IsProduction() {
		logger.Log.EnableDebugMode()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	testtool.StartPprof(cfg.Pprof.Enabled, cfg.Pprof.Addr)

	// 1. PostgreSQL: users via pgx, chats and messages via gorm
	pgConn := database.Connection{
		ConnectStr:    cfg.PostgreSQL.DSN(),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	}
	pool, err := database.NewDatabaseConnection(ctx, pgConn)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("host", cfg.PostgreSQL.Host),
			zap.Error(err),
		)
	}
	defer pool.Close()

	memberRepo := memberrepo.NewMemberRepository(pool)
	if err := memberRepo.Migrate(ctx); err != nil {
		logger.Log.Fatal("migrate users", zap.Error(err))
	}

	store, err := database.NewGormConnection(pgConn)
	if err != nil {
		logger.Log.Fatal("Unable to open chat store", zap.Error(err))
	}
	if err := chatrepo.Migrate(store); err != nil {
		logger.Log.Fatal("migrate chat store", zap.Error(err))
	}

	// 2. Redis sessions, optional
	var sessions database.RedisRepository[memberdomain.MemberSession]
	if cfg.Redis.Enabled() {
		redisClient, err := database.NewRedisClient(ctx, database.RedisConnection{
			Addr:          cfg.Redis.Addr,
			MasterName:    cfg.Redis.MasterName,
			SentinelAddrs: cfg.Redis.Sentinels,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.RedisDB,
		})
		if err != nil {
			logger.Log.Fatal("connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		sessions = database.NewRedisRepository[memberdomain.MemberSession](redisClient, "session:")
	} else {
		logger.Log.Warn("redis not configured, tokens are verified by signature only")
	}

	// 3. Kafka event export, optional
	events := chatrepo.NewNopEventPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		writer, err := database.NewKafkaWriterWithRetry(ctx, database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal("connect kafka", zap.Error(err))
		}
		events = chatrepo.NewKafkaEventPublisher(writer)
	}
	defer events.Close()

	// 4. UseCases
	tokens := token.NewManager(cfg.Token.Secret, cfg.Token.Issuer, cfg.Token.TTL)
	memberUC := memberapp.NewMemberUseCase(memberRepo, tokens, cfg.SessionTTL, sessions)

	chats := chatrepo.NewChatRepository(store)
	groups := chatrepo.NewGroupRepository(store)
	registry := hub.NewRegistry()
	messageUC := chatapp.NewMessageUseCase(
		chatapp.NewChatResolver(chats, groups),
		hub.NewGates(),
		chatrepo.NewMessageRepository(store),
		registry,
		events,
		chatapp.MessageOptions{
			DeliveryScope: cfg.DeliveryScope,
			DefaultLimit:  cfg.History.DefaultLimit,
			MaxLimit:      cfg.History.MaxLimit,
		},
	)
	groupUC := chatapp.NewGroupUseCase(groups, memberRepo)

	// 5. Fiber
	r := fiber.New(fiber.Config{DisableStartupMessage: config.IsProduction()})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Log.Fatal("Failed to open access log", zap.Error(err))
	}
	defer file.Close()

	r.Use(middlewares.RequestID())
	r.Use(fiber_log.New(fiber_log.Config{
		Format: "${time} ${locals:RequestID} ${status} ${latency} ${method} ${path}\n",
		Output: file, // 将日志输出到文件
	}))

	router.RegisterRoutes(r, router.Handlers{
		Member:    memberapp.NewMemberHandler(memberUC),
		Chat:      chatapp.NewChatHandler(messageUC, groupUC),
		Websocket: chatapp.NewChatWebsocketHandler(messageUC, registry, memberUC, cfg.WebSocket.PingInterval, cfg.WebSocket.WriteTimeout),
		Registry:  registry,
		Verifier:  memberUC,
	})

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down")
		if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Log.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Log.Info("Chat Service listening", zap.String("port", cfg.Port), zap.String("delivery_scope", cfg.DeliveryScope))
	if err := r.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}

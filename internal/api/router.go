package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/MoesLuis/debate-mvp/internal/api/handlers"
	"github.com/MoesLuis/debate-mvp/internal/api/middleware"
	"github.com/MoesLuis/debate-mvp/internal/config"
	"github.com/MoesLuis/debate-mvp/internal/repository"
	"github.com/MoesLuis/debate-mvp/internal/service"
	"github.com/MoesLuis/debate-mvp/internal/websocket"
	"github.com/MoesLuis/debate-mvp/pkg/database"
	"github.com/MoesLuis/debate-mvp/pkg/distributed"
	"github.com/MoesLuis/debate-mvp/pkg/logger"
	"github.com/MoesLuis/debate-mvp/pkg/ratelimit"
)

// SetupRouter API 라우터 설정
// relay는 호출자(main)가 소유한다. 여기서는 구독 루프를 시작해 각
// 인스턴스의 Hub로 이벤트를 전달하고, 종료 시 Stop은 호출자가 담당한다.
func SetupRouter(cfg *config.Config, db *database.DB, redisClient *redis.Client, relay *distributed.EventRelay) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg))

	zapLogger := logger.L()

	// Repository 초기화
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	queueRepo := repository.NewMatchmakingRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)

	// WebSocket Hub 초기화 및 시작
	wsHub := websocket.NewHub(zapLogger)
	go wsHub.Run()

	// 매치 이벤트 중계 구독 시작
	// 서비스는 relay에 발행하고, relay 구독 루프가 각 인스턴스의 Hub로 전달한다.
	go func() {
		err := relay.Start(context.Background(), func(event distributed.MatchEvent) {
			switch event.Type {
			case "match_found":
				wsHub.SendMatchFound(event.UserID, event.RoomToken, event.TopicID)
			case "match_ended":
				wsHub.SendMatchEnded(event.UserID, event.RoomToken, event.Reason)
			}
		})
		if err != nil && err != context.Canceled {
			logger.Error("Match event relay exited", "error", err)
		}
	}()

	// Service 초기화
	ratingService := service.NewRatingService(cfg)
	userService := service.NewUserService(userRepo, profileRepo)
	topicService := service.NewTopicService(topicRepo)
	matchmakingService := service.NewMatchmakingService(
		matchRepo, queueRepo, topicRepo, presenceRepo, relay, zapLogger)
	heartbeatService := service.NewHeartbeatService(
		matchRepo, presenceRepo, relay, cfg.HeartbeatTimeout, cfg.JoinGrace, zapLogger)
	agreementService := service.NewAgreementService(
		matchRepo, presenceRepo, settlementRepo, ratingService, relay, zapLogger)

	// Handler 초기화
	authHandler := handlers.NewAuthHandler(userService, cfg)
	userHandler := handlers.NewUserHandler(userService, topicService)
	matchmakingHandler := handlers.NewMatchmakingHandler(matchmakingService)
	matchHandler := handlers.NewMatchHandler(matchmakingService, heartbeatService, agreementService)
	wsHandler := handlers.NewWebSocketHandler(wsHub)

	// Redis 기반 Rate Limiter (인스턴스 수와 무관한 제한)
	redisLimiter := ratelimit.NewRedisRateLimiter(redisClient, "ratelimit:")

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// WebSocket endpoint
		v1.GET("/ws", middleware.Auth(cfg), wsHandler.HandleWebSocket)

		// Auth routes
		auth := v1.Group("/auth")
		auth.Use(middleware.RedisAuthRateLimit(redisLimiter))
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}

		// Topic routes
		v1.GET("/topics", userHandler.ListTopics)

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.Auth(cfg))
		{
			users.GET("/me", userHandler.GetMe)
			users.PUT("/me/topics", userHandler.UpdateMyTopics)
		}

		// Matchmaking routes
		matchmaking := v1.Group("/matchmaking")
		matchmaking.Use(middleware.Auth(cfg))
		{
			matchmaking.POST("/find-partner",
				middleware.RedisFindPartnerRateLimit(redisLimiter),
				matchmakingHandler.FindPartner)
			matchmaking.POST("/leave-queue", matchmakingHandler.LeaveQueue)
		}

		// Match routes
		matches := v1.Group("/matches")
		matches.Use(middleware.Auth(cfg))
		{
			matches.GET("/:roomToken", matchHandler.GetMatch)
			matches.POST("/:roomToken/heartbeat",
				middleware.HeartbeatRateLimit(),
				matchHandler.Heartbeat)
			matches.POST("/:roomToken/end", matchHandler.End)
			matches.POST("/:roomToken/retract-end", matchHandler.RetractEnd)
			matches.POST("/:roomToken/forfeit", matchHandler.Forfeit)
			matches.POST("/:roomToken/cancel", matchHandler.Cancel)
		}
	}

	return router
}

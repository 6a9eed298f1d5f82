package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/pikoUsername/roblox-searcher-backend/internal/api"
	"github.com/pikoUsername/roblox-searcher-backend/internal/config"
	"github.com/pikoUsername/roblox-searcher-backend/internal/handler"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/automation"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/kafka"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/redis"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/roblox"
	"github.com/pikoUsername/roblox-searcher-backend/internal/observability"
	core "github.com/pikoUsername/roblox-searcher-backend/internal/repository/postgres"
	service "github.com/pikoUsername/roblox-searcher-backend/internal/services"
)

func main() {
	shutdown, _ := observability.Setup("roblox-searcher")
	defer shutdown(context.Background())

	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	transactionRepo := core.NewPostgresTransactionRepository(db)
	botRepo := core.NewPostgresBotTokenRepository(db)
	bonusRepo := core.NewPostgresBonusRepository(db)
	sessionRepo := core.NewPostgresSessionTokenRepository(db)

	redisClient := redis.NewClient(cfg.RedisAddr)
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.PurchaseTopic)
	defer producer.Close()

	robloxClient := roblox.NewHTTPClient(cfg.UserAgent)
	poller := automation.NewRedisPoller(redisClient, cfg.Cache.ConfirmPollInterval)

	catalogSvc := service.NewCatalogService(robloxClient, redisClient, cfg.Cache, cfg.BotUserID)
	withdrawalSvc := service.NewWithdrawalService(redisClient, cfg.Cache.WithdrawalTTL)
	purchaseSvc := service.NewPurchaseService(catalogSvc, transactionRepo, bonusRepo, withdrawalSvc, poller, producer, cfg.Pricing, cfg.Cache)
	bonusSvc := service.NewBonusService(bonusRepo, cfg.Pricing)
	botSvc := service.NewBotService(botRepo)
	sessionSvc := service.NewSessionService(sessionRepo)
	authSvc := service.NewAuthService(redisClient, cfg.JWTSecret, cfg.AdminPasswordHash)

	resultConsumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.ResultTopic, "roblox-searcher-group", transactionRepo, redisClient)
	go resultConsumer.Consume(context.Background())
	defer resultConsumer.Close()

	h := handler.NewHandler(purchaseSvc, catalogSvc, botSvc, bonusSvc, withdrawalSvc, sessionSvc, authSvc, transactionRepo)
	router := api.SetupRouter(h, sessionSvc, redisClient, cfg.JWTSecret)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}
	go func() {
		log.Printf("Starting server on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}

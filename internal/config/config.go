package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
)

// Pricing holds the business constants of the purchase flow. It is built once
// at startup and passed into the services; nothing mutates it afterwards.
type Pricing struct {
	// MarkupFactor converts a requested robux amount into the listing price
	// that must exist on the marketplace.
	MarkupFactor float64
	// RobuxRate converts robux into the customer currency for URL buys.
	RobuxRate float64
	// ReferralReward is credited to the referrer's bonus balance per purchase.
	ReferralReward int
	// WithdrawalThreshold: requests at or below this amount must carry a
	// withdrawal authorization id.
	WithdrawalThreshold int64
	TaskRewards         map[models.BonusTask]int
}

func DefaultPricing() Pricing {
	return Pricing{
		MarkupFactor:        1.429,
		RobuxRate:           0.7,
		ReferralReward:      20,
		WithdrawalThreshold: 100,
		TaskRewards: map[models.BonusTask]int{
			models.TaskTelegram:   5,
			models.TaskVK:         5,
			models.TaskDiscord:    5,
			models.TaskTrustPilot: 10,
			models.TaskVKReview:   5,
			models.TaskDSReview:   5,
		},
	}
}

type CacheConfig struct {
	PlayerSearchTTL     time.Duration
	ListingsTTL         time.Duration
	PlayerGamesTTL      time.Duration
	StockTTL            time.Duration
	WithdrawalTTL       time.Duration
	SearchRetryDelay    time.Duration
	ConfirmPollTimeout  time.Duration
	ConfirmPollInterval time.Duration
}

func defaultCacheConfig() CacheConfig {
	return CacheConfig{
		PlayerSearchTTL:     360 * time.Second,
		ListingsTTL:         360 * time.Second,
		PlayerGamesTTL:      360 * time.Second,
		StockTTL:            360 * time.Second,
		WithdrawalTTL:       3600 * time.Second,
		SearchRetryDelay:    5 * time.Second,
		ConfirmPollTimeout:  4 * time.Second,
		ConfirmPollInterval: 500 * time.Millisecond,
	}
}

type Config struct {
	ListenAddr        string
	PostgresDSN       string
	RedisAddr         string
	KafkaBrokers      []string
	PurchaseTopic     string
	ResultTopic       string
	JWTSecret         string
	AdminPasswordHash string
	BotUserID         int64
	UserAgent         string

	Pricing Pricing
	Cache   CacheConfig
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, using default values", "error", err)
	}

	cfg := &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		PostgresDSN:       getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=robux sslmode=disable"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:      []string{getEnv("KAFKA_BROKER", "localhost:9092")},
		PurchaseTopic:     getEnv("KAFKA_PURCHASE_TOPIC", "purchases"),
		ResultTopic:       getEnv("KAFKA_RESULT_TOPIC", "purchase-results"),
		JWTSecret:         getEnv("JWT_SECRET", "supersecret"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		BotUserID:         getEnvInt64("BOT_USER_ID", 0),
		UserAgent:         getEnv("ROBLOX_USER_AGENT", "Mozilla/5.0"),
		Pricing:           DefaultPricing(),
		Cache:             defaultCacheConfig(),
	}

	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"redis_addr", cfg.RedisAddr,
		"kafka_brokers", cfg.KafkaBrokers,
		"purchase_topic", cfg.PurchaseTopic)
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("invalid integer env value, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}

package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/automation"
	"github.com/pikoUsername/roblox-searcher-backend/internal/infrastructure/redis"
	"github.com/pikoUsername/roblox-searcher-backend/internal/models"
	"github.com/pikoUsername/roblox-searcher-backend/internal/repository"
)

// Consumer applies purchase outcomes reported by the buyer worker: the
// pending transaction moves to completed or closed and the confirmation
// marker is cleared so the next workflow starts from a clean slate.
type Consumer struct {
	reader          *kafka.Reader
	transactionRepo repository.TransactionRepository
	cache           redis.RedisClient
}

func NewConsumer(brokers []string, topic, groupID string, transactionRepo repository.TransactionRepository, cache redis.RedisClient) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
		transactionRepo: transactionRepo,
		cache:           cache,
	}
}

func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("failed to read Kafka message", "topic", c.reader.Config().Topic, "error", err)
			continue
		}

		slog.Info("Kafka message received", "topic", msg.Topic, "key", string(msg.Key), "value", string(msg.Value))

		var event struct {
			TransactionID string `json:"transaction_id"`
			Status        string `json:"status"`
			Reason        string `json:"reason,omitempty"`
		}
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Error("failed to unmarshal purchase result event", "error", err)
			continue
		}

		txID, err := uuid.Parse(event.TransactionID)
		if err != nil {
			slog.Error("invalid transaction_id in purchase result", "value", event.TransactionID, "error", err)
			continue
		}

		status := models.TransactionStatus(event.Status)
		if status != models.StatusCompleted && status != models.StatusClosed && status != models.StatusPendingToResolve {
			slog.Error("invalid status in purchase result", "status", event.Status)
			continue
		}

		if err := c.transactionRepo.UpdateStatus(ctx, txID, status); err != nil {
			slog.Error("failed to update transaction status", "transaction_id", txID, "status", status, "error", err)
			continue
		}

		if err := c.cache.Del(ctx, automation.MarkerKey); err != nil {
			slog.Error("failed to clear confirmation marker", "transaction_id", txID, "error", err)
		}

		slog.Info("purchase result applied", "transaction_id", txID, "status", status, "reason", event.Reason)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/partsdesk/partpricer/internal/models"
)

// EventTypePricingRecorded is published after each successful price scrape.
const EventTypePricingRecorded = "PRICING_RECORDED"

// RedisClient is the subset of the redis client the publisher needs.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// PricingRecordedPayload is the immutable history entry downstream
// persistence consumes. The engine itself never writes storage; this stream
// is the boundary.
type PricingRecordedPayload struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Timestamp time.Time            `json:"timestamp"`
	ItemID    string               `json:"item_id"`
	Query     models.PartQuery     `json:"query"`
	Metrics   models.PricingResult `json:"metrics"`
}

// Publisher appends pricing history entries to a Redis stream.
type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishPricingRecorded appends one history entry keyed by item identity.
func (p *Publisher) PublishPricingRecorded(ctx context.Context, itemID string, query models.PartQuery, metrics models.PricingResult) error {
	payload := PricingRecordedPayload{
		EventID:   uuid.New().String(),
		EventType: EventTypePricingRecorded,
		Timestamp: time.Now().UTC(),
		ItemID:    itemID,
		Query:     query,
		Metrics:   metrics,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":       string(data),
			"event_type": payload.EventType,
			"event_id":   payload.EventID,
			"item_id":    itemID,
			"timestamp":  fmt.Sprintf("%d", payload.Timestamp.UnixNano()),
		},
	}

	if _, err := p.redis.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Info("pricing event published",
		"event_id", payload.EventID,
		"item_id", itemID,
		"stream", p.stream,
		"avg_price", metrics.AvgPrice)
	return nil
}

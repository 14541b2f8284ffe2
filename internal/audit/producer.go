// Package audit publishes moderation events to Kafka. Publishing is
// fire-and-forget: it is never part of the transactional guarantee of
// the action it records.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Event struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	TargetID  string    `json:"target_id"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer returns a producer, or one that only logs when no brokers
// are configured.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	p := &Producer{logger: logger}
	if len(brokers) > 0 && topic != "" {
		p.writer = kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		})
	}
	return p
}

// Publish records an admin action. Failures are logged and swallowed.
func (p *Producer) Publish(ctx context.Context, actorID, action, targetID, reason string) {
	ev := Event{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		TargetID:  targetID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}

	if p.writer == nil {
		p.logger.Info("admin action",
			zap.String("actor_id", ev.ActorID),
			zap.String("action", ev.Action),
			zap.String("target_id", ev.TargetID),
		)
		return
	}

	value, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("audit event marshal failed", zap.Error(err))
		return
	}
	msg := kafka.Message{Key: []byte(ev.TargetID), Value: value, Time: ev.Timestamp}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("audit event publish failed", zap.Error(err))
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

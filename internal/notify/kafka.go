package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/optionwatch/optionwatch/internal/config"
	"github.com/optionwatch/optionwatch/internal/models"
)

// KafkaChannel publishes fired alerts to an event topic so downstream
// consumers can react without touching the notification path.
type KafkaChannel struct {
	writer *kafka.Writer
	topic  string
}

// NewKafka creates a Kafka alert-event channel.
func NewKafka(cfg config.KafkaConfig) *KafkaChannel {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaChannel{
		writer: writer,
		topic:  cfg.Topic,
	}
}

// Name returns the channel identifier.
func (c *KafkaChannel) Name() string { return "kafka" }

// Send publishes an ALERT_FIRED event keyed by ticker.
func (c *KafkaChannel) Send(ctx context.Context, alert *Alert) error {
	event := models.AlertEvent{
		EventType:     "ALERT_FIRED",
		Ticker:        alert.Ticker,
		AlertType:     alert.AlertType,
		TriggerType:   alert.TriggerType,
		AlertCount:    alert.AlertCount,
		PercentChange: alert.PercentChange,
		CurrentPrice:  alert.CurrentPrice,
		PrevClose:     alert.PrevClose,
		Reason:        alert.Reason,
		Timestamp:     alert.Time,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(alert.Ticker),
		Value: data,
	}

	if err := c.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the underlying writer.
func (c *KafkaChannel) Close() error {
	return c.writer.Close()
}

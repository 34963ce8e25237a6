package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/ai-feed-monitor/internal/logging"
	"github.com/trogers1052/ai-feed-monitor/internal/models"
)

// FeedEventType tags republished feed events
const FeedEventType = "AI_FEED_EVENT"

// FeedEnvelope is the message value written to the feed topic
type FeedEnvelope struct {
	EventType  string           `json:"event_type"`
	Source     string           `json:"source"`
	ReceivedAt string           `json:"received_at"`
	Data       models.FeedEvent `json:"data"`
}

// messageWriter is the subset of *kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer republishes feed events to Kafka
type Producer struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewProducer creates a Kafka producer for the feed topic. Writes are
// asynchronous so a slow broker never stalls the feed; delivery errors are
// logged from the completion callback.
func NewProducer(brokers []string, topic string, logger zerolog.Logger) *Producer {
	logger = logging.Component(logger, "kafka").With().Str("topic", topic).Logger()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error().Err(err).Int("messages", len(messages)).Msg("Failed to deliver feed events")
			}
		},
	}

	return &Producer{writer: writer, topic: topic, now: time.Now}
}

// Name identifies the Kafka sink in logs and metrics
func (p *Producer) Name() string {
	return "kafka"
}

// PublishEvent writes one feed event keyed by symbol
func (p *Producer) PublishEvent(ctx context.Context, event models.FeedEvent) error {
	msg, err := p.buildMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write feed event to %s: %w", p.topic, err)
	}
	return nil
}

// buildMessage wraps the event in an envelope. Events without a symbol
// (older producers) share the "UNKNOWN" key.
func (p *Producer) buildMessage(event models.FeedEvent) (kafka.Message, error) {
	receivedAt := p.now().UTC()

	envelope := FeedEnvelope{
		EventType:  FeedEventType,
		Source:     "ai-feed-monitor",
		ReceivedAt: receivedAt.Format(time.RFC3339Nano),
		Data:       event,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal feed event: %w", err)
	}

	key := strings.ToUpper(strings.TrimSpace(event.Symbol))
	if key == "" {
		key = "UNKNOWN"
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  receivedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(FeedEventType)},
		},
	}, nil
}

// Close flushes pending writes and closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

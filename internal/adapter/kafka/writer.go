package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/meteor-impact-service/internal/config"
	"github.com/couchcryptid/meteor-impact-service/internal/domain"
)

// Writer produces site events to a Kafka topic.
// It implements domain.SiteEventPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured site topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSiteTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishSiteEvent serializes and writes a single site event.
func (w *Writer) PublishSiteEvent(ctx context.Context, event domain.SiteEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write site event: %w", err)
	}
	w.logger.Debug("site event published", "type", event.Type, "event_id", event.ID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SiteEvent into a Kafka message keyed by site id
// so all events for a site land on the same partition.
func serializeToMessage(event domain.SiteEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize site event: %w", err)
	}

	key := event.ID
	if event.Site != nil {
		key = strconv.FormatInt(event.Site.ID, 10)
	}

	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}

// NoopPublisher discards site events. It is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishSiteEvent(context.Context, domain.SiteEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }

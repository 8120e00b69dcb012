// Package kafka publishes evaluated metric bundles to a sink topic for
// downstream consumers such as alerting services. Publishing is
// feature-flagged; the monitor runs unchanged without brokers configured.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sunwolf-labs/supt-monitor/internal/config"
	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

// Publisher produces metric bundles to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBundle serializes and publishes one metric bundle.
func (p *Publisher) PublishBundle(ctx context.Context, bundle domain.MetricBundle) error {
	msg, err := serializeToMessage(bundle)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a MetricBundle into a Kafka message keyed by
// evaluation time, with the phase and catalog source as headers so consumers
// can filter without deserializing.
func serializeToMessage(bundle domain.MetricBundle) (kafkago.Message, error) {
	data, err := json.Marshal(bundle)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize metric bundle: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(bundle.EvaluatedAt.UTC().Format(time.RFC3339)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "rpam_phase", Value: []byte(bundle.Phase)},
			{Key: "catalog_source", Value: []byte(bundle.CatalogSource)},
		},
	}, nil
}

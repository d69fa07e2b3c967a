package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
)

// Producer publishes envelopes to Kafka.  The application layer depends on
// this interface so tests can substitute a recorder and deployments without
// Kafka can use NewNopProducer.
type Producer interface {
	// Publish sends one envelope to topic, keyed for partition affinity.
	Publish(ctx context.Context, topic, key string, env EventEnvelope) error

	// Close flushes and releases the underlying writer.
	Close() error
}

// ProducerConfig carries connection parameters for the Kafka writer.
type ProducerConfig struct {
	Brokers      []string      `mapstructure:"brokers" yaml:"brokers"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout" yaml:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

type producer struct {
	writer *kafkago.Writer
	logger logging.Logger
}

// NewProducer constructs a Kafka-backed Producer.
func NewProducer(cfg ProducerConfig, logger logging.Logger) Producer {
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Balancer:     &kafkago.Hash{},
			BatchTimeout: cfg.BatchTimeout,
			WriteTimeout: cfg.WriteTimeout,
			RequiredAcks: kafkago.RequireOne,
		},
		logger: logger.Named("kafka.producer"),
	}
}

func (p *producer) Publish(ctx context.Context, topic, key string, env EventEnvelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode event envelope")
	}
	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "publish to "+topic)
	}
	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_id", env.ID),
		logging.String("event_type", env.Type))
	return nil
}

func (p *producer) Close() error {
	return p.writer.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// No-op producer
// ─────────────────────────────────────────────────────────────────────────────

type nopProducer struct{}

func (nopProducer) Publish(context.Context, string, string, EventEnvelope) error { return nil }
func (nopProducer) Close() error                                                 { return nil }

// NewNopProducer returns a Producer that discards every event.  Used in tests
// and in deployments where event publishing is disabled.
func NewNopProducer() Producer { return nopProducer{} }

package events

import (
	"context"
	"fmt"

	"motoagenda/pkg/config"
	"motoagenda/pkg/kafka"
	"motoagenda/pkg/logger"
	"motoagenda/pkg/model"
)

const (
	EventTypeAppointmentCreated = "appointment.created"
	SchemaVersion               = "1"

	// HeaderAppointmentDate lets consumers filter by day without decoding.
	HeaderAppointmentDate = "appointment-date"
)

// Publisher announces accepted appointments to downstream consumers.
type Publisher interface {
	PublishCreated(ctx context.Context, appt *model.Appointment, correlationID string) error
	Close() error
}

type messageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Topic() string
	Stats() kafka.ProducerStats
	Close() error
}

type KafkaPublisher struct {
	producer messageProducer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(cfg *config.Config, source string) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaTopic,
		Compression:  cfg.KafkaCompression,
		RequiredAcks: cfg.KafkaRequiredAcks,
		MaxAttempts:  cfg.KafkaMaxAttempts,
		BatchTimeout: cfg.KafkaBatchTimeout,
	}, cfg.Log)
	if err != nil {
		return nil, err
	}

	cfg.Log.Info("Appointment events enabled",
		"topic", producer.Topic(),
		"brokers", cfg.KafkaBrokers,
		"compression", cfg.KafkaCompression,
		"required_acks", cfg.KafkaRequiredAcks,
	)
	return &KafkaPublisher{producer: producer, source: source, log: cfg.Log}, nil
}

func (p *KafkaPublisher) PublishCreated(ctx context.Context, appt *model.Appointment, correlationID string) error {
	msg, err := kafka.NewMessage().
		WithKey(appt.Date).
		WithValue(appt).
		WithEventType(EventTypeAppointmentCreated).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(correlationID).
		WithHeader(HeaderAppointmentDate, appt.Date).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", EventTypeAppointmentCreated, err)
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	stats := p.producer.Stats()
	p.log.Info("Closing appointment event producer",
		"topic", p.producer.Topic(),
		"messages", stats.Messages,
		"errors", stats.Errors,
	)
	return p.producer.Close()
}

// NopPublisher is wired when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCreated(context.Context, *model.Appointment, string) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}

// New picks the Kafka publisher when brokers are configured.
func New(cfg *config.Config, source string) (Publisher, error) {
	if !cfg.KafkaEnabled() {
		return NopPublisher{}, nil
	}
	return NewKafkaPublisher(cfg, source)
}

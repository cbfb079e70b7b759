package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"shareit/internal/config"
	"shareit/internal/logging"
	"shareit/internal/models"
)

// ProducerName identifies this service in published envelopes.
const ProducerName = "shareit"

// Envelope wraps every event relayed to Kafka.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EnvelopeFor wraps an outbox record. The aggregate id doubles as correlation id.
func EnvelopeFor(ev models.OutboxEvent) Envelope {
	payload := json.RawMessage(ev.Payload)
	if !json.Valid(payload) {
		quoted, _ := json.Marshal(ev.Payload)
		payload = quoted
	}
	return Envelope{
		EventID:       ev.EventID,
		EventType:     ev.EventType,
		EventVersion:  1,
		OccurredAt:    ev.CreatedAt.UTC(),
		Producer:      ProducerName,
		CorrelationID: strconv.FormatInt(ev.AggregateID, 10),
		Payload:       payload,
	}
}

// Message encodes an outbox record as a Kafka message keyed by aggregate id,
// so events of one aggregate stay ordered within a partition.
func Message(ev models.OutboxEvent) (key, value []byte, headers map[string]string, err error) {
	value, err = json.Marshal(EnvelopeFor(ev))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode envelope %s: %w", ev.EventID, err)
	}
	headers = map[string]string{
		"event_type": ev.EventType,
		"event_id":   ev.EventID,
	}
	return []byte(strconv.FormatInt(ev.AggregateID, 10)), value, headers, nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes messages synchronously and waits for all in-sync replicas.
type KafkaPublisher struct {
	w      messageWriter
	topic  string
	logger zerolog.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		topic:  cfg.Topic,
		logger: logging.Component(logger, "kafka"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key, value []byte, headers map[string]string) error {
	msg := kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}
	for k, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write to %s: %w", p.topic, err)
	}
	p.logger.Debug().Str("topic", p.topic).Str("key", string(key)).Msg("message published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

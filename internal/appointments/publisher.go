package appointments

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/wolfman30/barbershop-concierge/internal/extract"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

// EventTypeCaptured is the event type (and default topic) for a stored record.
const EventTypeCaptured = "appointment.captured"

// CapturedEvent is the JSON payload published after a record is stored.
type CapturedEvent struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	CapturedAt time.Time      `json:"captured_at"`
	Fields     extract.Fields `json:"fields"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublishingRepository forwards to an inner repository and announces every
// successful append on Kafka. Publish failures never fail the append.
type PublishingRepository struct {
	inner  Repository
	writer messageWriter
	topic  string
	logger *logging.Logger
}

var _ Repository = (*PublishingRepository)(nil)

// publishBatchTimeout bounds how long a synchronous write on the booking path
// waits for a batch to fill. kafka-go defaults to one second.
const publishBatchTimeout = 10 * time.Millisecond

// NewKafkaWriter builds a writer for a comma-separated broker list, or nil
// when no brokers are configured.
func NewKafkaWriter(brokers string) *kafka.Writer {
	list := SplitBrokers(brokers)
	if len(list) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(list...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           publishBatchTimeout,
		AllowAutoTopicCreation: true,
	}
}

// NewPublishingRepository wraps inner. A nil writer disables publishing.
func NewPublishingRepository(inner Repository, writer messageWriter, topic string, logger *logging.Logger) *PublishingRepository {
	if inner == nil {
		panic("appointments: inner repository required")
	}
	if topic == "" {
		topic = EventTypeCaptured
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PublishingRepository{inner: inner, writer: writer, topic: topic, logger: logger}
}

// Append stores the record, then publishes it.
func (r *PublishingRepository) Append(ctx context.Context, record extract.Fields) error {
	if err := r.inner.Append(ctx, record); err != nil {
		return err
	}
	if r.writer == nil {
		return nil
	}

	event := CapturedEvent{
		EventID:    uuid.NewString(),
		EventType:  EventTypeCaptured,
		CapturedAt: time.Now().UTC(),
		Fields:     record,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Warn("appointment event encode failed", "error", err)
		return nil
	}
	msg := kafka.Message{
		Topic: r.topic,
		Key:   []byte(event.EventID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	msg.Headers = injectTraceHeaders(ctx, msg.Headers)
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		r.logger.Warn("appointment event publish failed", "error", err, "topic", r.topic)
	}
	return nil
}

// List delegates to the inner repository.
func (r *PublishingRepository) List(ctx context.Context) ([]extract.Fields, error) {
	return r.inner.List(ctx)
}

// Close releases the Kafka writer.
func (r *PublishingRepository) Close() error {
	if r.writer == nil {
		return nil
	}
	return r.writer.Close()
}

// SplitBrokers parses a comma-separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/barbershop-concierge/internal/extract"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

type stubWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

type failingRepo struct{ err error }

func (f failingRepo) Append(context.Context, extract.Fields) error { return f.err }
func (f failingRepo) List(context.Context) ([]extract.Fields, error) {
	return nil, f.err
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishingRepository_PublishesAfterAppend(t *testing.T) {
	inner := NewInMemoryRepository()
	writer := &stubWriter{}
	repo := NewPublishingRepository(inner, writer, "", nil)

	record := extract.Fields{Name: "John Smith", Phone: "555-123-4567"}
	require.NoError(t, repo.Append(context.Background(), record))

	stored, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []extract.Fields{record}, stored)

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, EventTypeCaptured, msg.Topic)
	assert.Equal(t, EventTypeCaptured, header(msg, "event_type"))
	assert.Equal(t, string(msg.Key), header(msg, "event_id"))

	var event CapturedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, record, event.Fields)
	assert.Equal(t, EventTypeCaptured, event.EventType)
	assert.NotEmpty(t, event.EventID)
}

func TestPublishingRepository_PublishFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")
	writer := &stubWriter{err: errors.New("broker down")}
	repo := NewPublishingRepository(NewInMemoryRepository(), writer, "bookings", logger)

	require.NoError(t, repo.Append(context.Background(), extract.Fields{Service: "shave"}))
	assert.Contains(t, buf.String(), "appointment event publish failed")
	assert.Contains(t, buf.String(), "bookings")

	stored, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestPublishingRepository_InnerFailureSkipsPublish(t *testing.T) {
	writer := &stubWriter{}
	repo := NewPublishingRepository(failingRepo{err: errors.New("store down")}, writer, "t", nil)

	err := repo.Append(context.Background(), extract.Fields{Name: "X"})
	require.Error(t, err)
	assert.Empty(t, writer.messages)
}

func TestPublishingRepository_NilWriter(t *testing.T) {
	repo := NewPublishingRepository(NewInMemoryRepository(), nil, "t", nil)
	require.NoError(t, repo.Append(context.Background(), extract.Fields{Name: "X"}))
	require.NoError(t, repo.Close())
}

func TestPublishingRepository_Close(t *testing.T) {
	writer := &stubWriter{}
	repo := NewPublishingRepository(NewInMemoryRepository(), writer, "t", nil)
	require.NoError(t, repo.Close())
	assert.True(t, writer.closed)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, SplitBrokers(""))
}

func TestNewKafkaWriter(t *testing.T) {
	assert.Nil(t, NewKafkaWriter(""))
	w := NewKafkaWriter("localhost:9092")
	require.NotNil(t, w)
	assert.Equal(t, "localhost:9092", w.Addr.String())
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
}

func TestHeaderCarrierSetReplaces(t *testing.T) {
	c := &headerCarrier{headers: []kafka.Header{{Key: "traceparent", Value: []byte("old")}}}
	c.Set("traceparent", "new")
	c.Set("tracestate", "x")
	assert.Equal(t, "new", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent", "tracestate"}, c.Keys())
}

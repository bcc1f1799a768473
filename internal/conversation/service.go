package conversation

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/barbershop-concierge/internal/extract"
	"github.com/wolfman30/barbershop-concierge/internal/observability/metrics"
)

var serviceTracer = otel.Tracer("barbershop.internal.conversation")

// ErrEmptyMessage is returned when the message is blank after trimming.
var ErrEmptyMessage = errors.New("conversation: no message provided")

// Response is the outcome of one chat message.
type Response struct {
	Reply     string         `json:"response"`
	Extracted extract.Fields `json:"extracted_info"`
	Intent    Intent         `json:"-"`
}

// Service answers a single chat message.
type Service interface {
	Reply(ctx context.Context, message string) (*Response, error)
}

type replier interface {
	Reply(ctx context.Context, message string) string
}

// ChatService routes a message to a template or to the upstream model.
type ChatService struct {
	composer *Composer
	fallback replier
	metrics  *metrics.ChatMetrics
}

var _ Service = (*ChatService)(nil)

func NewChatService(composer *Composer, fallback *FallbackClient, m *metrics.ChatMetrics) *ChatService {
	if composer == nil {
		panic("conversation: composer cannot be nil")
	}
	if fallback == nil {
		panic("conversation: fallback client cannot be nil")
	}
	return &ChatService{composer: composer, fallback: fallback, metrics: m}
}

// Reply classifies, answers, then extracts fields from the raw message
// again for the response regardless of the intent taken.
func (s *ChatService) Reply(ctx context.Context, message string) (*Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	ctx, span := serviceTracer.Start(ctx, "conversation.reply")
	defer span.End()

	intent := ClassifyIntent(message)
	span.SetAttributes(attribute.String("barbershop.intent", string(intent)))
	s.metrics.ObserveIntent(string(intent))

	reply, ok := s.composer.Compose(ctx, intent, message)
	if !ok {
		reply = s.fallback.Reply(ctx, message)
	}

	return &Response{
		Reply:     reply,
		Extracted: extract.Extract(message),
		Intent:    intent,
	}, nil
}

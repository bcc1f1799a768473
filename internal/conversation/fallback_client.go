package conversation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/barbershop-concierge/internal/business"
	"github.com/wolfman30/barbershop-concierge/internal/observability/metrics"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

// ApologyReply is returned in place of any upstream failure.
const ApologyReply = "Sorry, I'm having trouble connecting to my brain. Please try again."

const defaultLLMTimeout = 30 * time.Second

// FallbackClient answers free-form messages through the upstream model and
// never surfaces its errors.
type FallbackClient struct {
	llm     LLMClient
	prompt  string
	timeout time.Duration
	metrics *metrics.ChatMetrics
	logger  *logging.Logger
}

// NewFallbackClient wraps llm with the persona prompt of profile. A zero
// timeout means 30 seconds.
func NewFallbackClient(llm LLMClient, profile business.Profile, timeout time.Duration, m *metrics.ChatMetrics, logger *logging.Logger) *FallbackClient {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackClient{
		llm:     llm,
		prompt:  profile.SystemPrompt(),
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// Reply returns the completion text verbatim, or ApologyReply on any error.
func (c *FallbackClient) Reply(ctx context.Context, message string) string {
	ctx, span := llmTracer.Start(ctx, "conversation.fallback")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.llm.Complete(callCtx, LLMRequest{
		Messages: []ChatMessage{
			{Role: ChatRoleSystem, Content: c.prompt},
			{Role: ChatRoleUser, Content: message},
		},
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("barbershop.llm.fallback", true))
		c.metrics.ObserveLLM("error", elapsed)
		c.logger.Warn("llm call failed, returning apology", "error", err, "duration_s", elapsed)
		return ApologyReply
	}
	c.metrics.ObserveLLM("ok", elapsed)
	return resp.Text
}

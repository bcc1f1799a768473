package conversation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var llmTracer = otel.Tracer("barbershop.internal.conversation.llm")

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig points the client at any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// OpenAIClient implements LLMClient over the chat-completions API.
type OpenAIClient struct {
	client      chatClient
	model       string
	maxTokens   int
	temperature float32
}

var _ LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client whose HTTP transport is traced.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	return newOpenAIClientWithChat(openai.NewClientWithConfig(clientCfg), cfg)
}

func newOpenAIClientWithChat(client chatClient, cfg OpenAIConfig) *OpenAIClient {
	if client == nil {
		panic("conversation: chat client cannot be nil")
	}
	if cfg.Model == "" {
		cfg.Model = "mistral"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	return &OpenAIClient{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Complete sends one chat completion. Request fields left zero fall back to
// the client's configured values.
func (c *OpenAIClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	ctx, span := llmTracer.Start(ctx, "conversation.openai")
	defer span.End()

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := int(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	// Zero means unset; the request field is omitempty so 0 cannot be sent.
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	span.SetAttributes(attribute.String("barbershop.llm.model", model))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		span.RecordError(err)
		return LLMResponse{}, fmt.Errorf("conversation: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := errors.New("conversation: openai returned no choices")
		span.RecordError(err)
		return LLMResponse{}, err
	}
	choice := resp.Choices[0]
	if emptyMessage(choice.Message) {
		err := errors.New("conversation: openai returned empty completion")
		span.RecordError(err)
		return LLMResponse{}, err
	}
	return LLMResponse{
		Text: choice.Message.Content,
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.PromptTokens),
			OutputTokens: int32(resp.Usage.CompletionTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
		StopReason: string(choice.FinishReason),
	}, nil
}

// emptyMessage reports a choice whose message was null or missing in the body.
func emptyMessage(m openai.ChatCompletionMessage) bool {
	return m.Content == "" && len(m.MultiContent) == 0 && len(m.ToolCalls) == 0
}

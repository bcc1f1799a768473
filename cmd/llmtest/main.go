package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/wolfman30/barbershop-concierge/internal/business"
	appconfig "github.com/wolfman30/barbershop-concierge/internal/config"
	"github.com/wolfman30/barbershop-concierge/internal/conversation"
)

// llmtest sends one persona-prompted message to the configured
// OpenAI-compatible endpoint and prints the raw result or error.
func main() {
	message := flag.String("message", "What's the difference between a fade and a taper?", "user message to send")
	flag.Parse()

	cfg := appconfig.Load()

	fmt.Println("LLM endpoint probe")
	fmt.Printf("  url:   %s\n", cfg.LLMBaseURL)
	fmt.Printf("  model: %s\n", cfg.LLMModel)

	client := conversation.NewOpenAIClient(conversation.OpenAIConfig{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout)
	defer cancel()

	start := time.Now()
	resp, err := client.Complete(ctx, conversation.LLMRequest{
		Messages: []conversation.ChatMessage{
			{Role: conversation.ChatRoleSystem, Content: business.Default().SystemPrompt()},
			{Role: conversation.ChatRoleUser, Content: *message},
		},
	})
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		fmt.Printf("\n❌ request failed after %v: %v\n", elapsed, err)
		fmt.Printf("   the API would answer: %q\n", conversation.ApologyReply)
		os.Exit(1)
	}

	fmt.Printf("\n✅ response (%v):\n%s\n", elapsed, resp.Text)
	fmt.Printf("\ntokens: in=%d out=%d total=%d stop=%s\n",
		resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens, resp.StopReason)
}

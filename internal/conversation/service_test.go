package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/barbershop-concierge/internal/appointments"
	"github.com/wolfman30/barbershop-concierge/internal/business"
	"github.com/wolfman30/barbershop-concierge/internal/extract"
)

func newTestService(t *testing.T, llm LLMClient) (*ChatService, *appointments.InMemoryRepository) {
	t.Helper()
	repo := appointments.NewInMemoryRepository()
	profile := business.Default()
	composer := NewComposer(profile, repo, nil, nil)
	fallback := NewFallbackClient(llm, profile, 0, nil, nil)
	return NewChatService(composer, fallback, nil), repo
}

func count(t *testing.T, repo appointments.Repository) int {
	t.Helper()
	records, err := repo.List(context.Background())
	require.NoError(t, err)
	return len(records)
}

func TestChatService_EmptyMessage(t *testing.T) {
	svc, repo := newTestService(t, &stubLLM{})
	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := svc.Reply(context.Background(), msg)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Zero(t, count(t, repo))
}

func TestChatService_HoursWinsOverServices(t *testing.T) {
	llm := &stubLLM{text: "unused"}
	svc, _ := newTestService(t, llm)

	resp, err := svc.Reply(context.Background(), "What are your hours and how much is a shave?")
	require.NoError(t, err)
	assert.Equal(t, IntentHours, resp.Intent)
	assert.Contains(t, resp.Reply, "Mon-Sat: 9AM-7PM, Sun: 10AM-4PM")
	assert.Empty(t, llm.requests)
}

func TestChatService_ServicesReply(t *testing.T) {
	svc, _ := newTestService(t, &stubLLM{})
	resp, err := svc.Reply(context.Background(), "How much is a haircut?")
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "Haircut: $25")
	assert.Equal(t, extract.Fields{Service: "haircut"}, resp.Extracted)
}

func TestChatService_BookingAppendsOnce(t *testing.T) {
	svc, repo := newTestService(t, &stubLLM{})

	resp, err := svc.Reply(context.Background(), "I want to book an appointment, my name is John Smith, 555-123-4567")
	require.NoError(t, err)
	assert.Equal(t, IntentBooking, resp.Intent)
	assert.Equal(t, "John Smith", resp.Extracted.Name)
	assert.Equal(t, "555-123-4567", resp.Extracted.Phone)
	assert.Equal(t, 1, count(t, repo))
}

func TestChatService_BookingEmptyExtractionDoesNotAppend(t *testing.T) {
	svc, repo := newTestService(t, &stubLLM{})
	resp, err := svc.Reply(context.Background(), "I'd like to book")
	require.NoError(t, err)
	assert.Equal(t, bookingChecklist, resp.Reply)
	assert.True(t, resp.Extracted.IsEmpty())
	assert.Zero(t, count(t, repo))
}

func TestChatService_ContactMessageStillExtracts(t *testing.T) {
	svc, repo := newTestService(t, &stubLLM{})

	// "phone" outranks "book", so this is a contact query; fields are still
	// extracted for the response but nothing is stored.
	resp, err := svc.Reply(context.Background(), "I want to book an appointment, my name is John Smith, phone 555-123-4567")
	require.NoError(t, err)
	assert.Equal(t, IntentContact, resp.Intent)
	assert.Contains(t, resp.Reply, "📞 **Contact Us**")
	assert.Equal(t, "John Smith", resp.Extracted.Name)
	assert.Equal(t, "555-123-4567", resp.Extracted.Phone)
	assert.Zero(t, count(t, repo))
}

func TestChatService_FallbackDelegates(t *testing.T) {
	llm := &stubLLM{text: "A comb walks into a bar..."}
	svc, _ := newTestService(t, llm)

	resp, err := svc.Reply(context.Background(), "  Tell me a joke ")
	require.NoError(t, err)
	assert.Equal(t, IntentFallback, resp.Intent)
	assert.Equal(t, "A comb walks into a bar...", resp.Reply)
	require.Len(t, llm.requests, 1)
	assert.Equal(t, "Tell me a joke", llm.requests[0].Messages[1].Content)
}

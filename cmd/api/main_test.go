package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/barbershop-concierge/internal/appointments"
	appconfig "github.com/wolfman30/barbershop-concierge/internal/config"
	"github.com/wolfman30/barbershop-concierge/internal/conversation"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

func TestSetupChatMetricsExposesMetrics(t *testing.T) {
	handler, m := setupChatMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveIntent("hours")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "barbershop_chat_intents_total") {
		t.Fatalf("expected intent counter to be exported")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go runtime collector to be exported")
	}
}

func unreachableURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return "http://" + addr + "/v1"
}

func TestBuildHandlerServesChatFlows(t *testing.T) {
	cfg := &appconfig.Config{
		LLMBaseURL:   unreachableURL(t),
		LLMModel:     "mistral",
		LLMMaxTokens: 500,
		LLMTimeout:   2 * time.Second,
	}
	metricsHandler, m := setupChatMetrics()
	repo := appointments.NewInMemoryRepository()
	h := buildHandler(cfg, logging.New("error"), repo, m, metricsHandler, nil)

	post := func(msg string) map[string]any {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":`+msg+`}`))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("chat %s: expected 200, got %d", msg, rr.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return body
	}

	if got := post(`"Tell me a joke"`)["response"]; got != conversation.ApologyReply {
		t.Fatalf("expected apology, got %v", got)
	}
	if got := post(`"What are your hours?"`)["response"].(string); !strings.Contains(got, "Mon-Sat: 9AM-7PM, Sun: 10AM-4PM") {
		t.Fatalf("expected hours reply, got %q", got)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	var health map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["llm_url"] != cfg.LLMBaseURL {
		t.Fatalf("expected llm_url %q, got %q", cfg.LLMBaseURL, health["llm_url"])
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `barbershop_chat_llm_requests_total{status="error"} 1`) {
		t.Fatalf("expected llm error to be counted")
	}
}

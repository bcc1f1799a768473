package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/barbershop-concierge/internal/appointments"
	"github.com/wolfman30/barbershop-concierge/internal/business"
	"github.com/wolfman30/barbershop-concierge/internal/conversation"
	httpmiddleware "github.com/wolfman30/barbershop-concierge/internal/http/middleware"
	"github.com/wolfman30/barbershop-concierge/internal/observability/metrics"
	"github.com/wolfman30/barbershop-concierge/internal/web"
	"github.com/wolfman30/barbershop-concierge/internal/webchat"
	"github.com/wolfman30/barbershop-concierge/pkg/logging"
)

type cannedLLM struct{}

func (cannedLLM) Complete(_ context.Context, _ conversation.LLMRequest) (conversation.LLMResponse, error) {
	return conversation.LLMResponse{Text: "Happy to help!"}, nil
}

func newTestRouter(t *testing.T, limiter *httpmiddleware.RateLimiter) http.Handler {
	t.Helper()

	logger := logging.New("error")
	reg := prometheus.NewRegistry()
	m := metrics.NewChatMetrics(reg)
	profile := business.Default()
	repo := appointments.NewInMemoryRepository()
	svc := conversation.NewChatService(
		conversation.NewComposer(profile, repo, m, logger),
		conversation.NewFallbackClient(cannedLLM{}, profile, 0, m, logger),
		m,
	)

	cfg := &Config{
		Logger:             logger,
		ChatHandler:        conversation.NewHandler(svc, repo, "http://llm.test/v1", logger),
		WebChatHandler:     webchat.NewHandler(svc, logger),
		IndexHandler:       web.NewIndexHandler(profile, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RateLimiter:        limiter,
		CORSAllowedOrigins: []string{"https://shop.example"},
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "healthy" || resp["llm_url"] != "http://llm.test/v1" {
		t.Errorf("unexpected health body %v", resp)
	}
}

func TestRouterChatThenAppointments(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"I need a cut friday, I'm dana"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/appointments", nil))
	var body struct {
		Appointments []map[string]string `json:"appointments"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Appointments) != 1 || body.Appointments[0]["name"] != "Dana" {
		t.Fatalf("unexpected appointments %v", body.Appointments)
	}
}

func TestRouterFallbackReply(t *testing.T) {
	router := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"Tell me a joke"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["response"] != "Happy to help!" {
		t.Fatalf("unexpected response %v", resp["response"])
	}
}

func TestRouterIndexAndMetrics(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Classic Sports Barbershop") {
		t.Fatalf("index page not served: %d", rr.Code)
	}

	chat := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"What are your hours?"}`))
	router.ServeHTTP(httptest.NewRecorder(), chat)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `barbershop_chat_intents_total{intent="hours"} 1`) {
		t.Fatalf("expected intent counter in metrics output, got:\n%s", rr.Body.String())
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestRouterRateLimitsChat(t *testing.T) {
	limiter := httpmiddleware.NewRateLimiter(0.001, 1)
	t.Cleanup(limiter.Stop)
	router := newTestRouter(t, limiter)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hours?"}`))
		req.RemoteAddr = "198.51.100.4:1000"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}
	if code := send(); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", code)
	}

	// Health is not limited.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "198.51.100.4:1000"
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("health should not be rate limited, got %d", rr.Code)
	}
}

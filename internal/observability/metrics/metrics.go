package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for chat flows.
type ChatMetrics struct {
	intentsTotal      *prometheus.CounterVec
	llmRequestsTotal  *prometheus.CounterVec
	llmLatency        prometheus.Histogram
	appointmentsTotal *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		intentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbershop",
			Subsystem: "chat",
			Name:      "intents_total",
			Help:      "Chat messages by classified intent",
		}, []string{"intent"}),
		llmRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbershop",
			Subsystem: "chat",
			Name:      "llm_requests_total",
			Help:      "Upstream completion calls by outcome",
		}, []string{"status"}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "barbershop",
			Subsystem: "chat",
			Name:      "llm_latency_seconds",
			Help:      "Latency of upstream completion calls",
			Buckets:   prometheus.DefBuckets,
		}),
		appointmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbershop",
			Subsystem: "chat",
			Name:      "appointments_captured_total",
			Help:      "Booking captures by storage outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.intentsTotal, m.llmRequestsTotal, m.llmLatency, m.appointmentsTotal)
	return m
}

func (m *ChatMetrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.intentsTotal.WithLabelValues(intent).Inc()
}

// ObserveLLM records one upstream call. status is "ok" or "error".
func (m *ChatMetrics) ObserveLLM(status string, seconds float64) {
	if m == nil {
		return
	}
	m.llmRequestsTotal.WithLabelValues(status).Inc()
	m.llmLatency.Observe(seconds)
}

func (m *ChatMetrics) ObserveAppointment(status string) {
	if m == nil {
		return
	}
	m.appointmentsTotal.WithLabelValues(status).Inc()
}

package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InvalidAction - метка для действий вне известного набора.
const InvalidAction = "invalid"

var offerActions = map[string]bool{"accept": true, "reject": true, "confirm": true}

// Metrics - коллекторы сервиса и реестр, в котором они зарегистрированы.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight     prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	offerResponses   *prometheus.CounterVec
	ordersCreated    prometheus.Counter
	orderTransitions *prometheus.CounterVec
}

// New создаёт коллекторы и регистрирует их в новом реестре.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "marketplace",
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marketplace",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "marketplace",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		offerResponses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marketplace",
				Subsystem: "offers",
				Name:      "responses_total",
				Help:      "Offer responses by action and outcome.",
			},
			[]string{"action", "result"},
		),
		ordersCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "marketplace",
				Subsystem: "orders",
				Name:      "created_total",
				Help:      "Orders created from confirmed offers.",
			},
		),
		orderTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "marketplace",
				Subsystem: "orders",
				Name:      "transitions_total",
				Help:      "Order status changes by target status.",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.offerResponses,
		m.ordersCreated,
		m.orderTransitions,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry возвращает реестр коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдает метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler собирает метрики HTTP-запросов.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordOfferResponse учитывает ответ на предложение. Неизвестные действия пишутся под меткой invalid.
func (m *Metrics) RecordOfferResponse(action string, err error) {
	if !offerActions[action] {
		action = InvalidAction
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.offerResponses.WithLabelValues(action, result).Inc()
}

// RecordOrderCreated учитывает созданный заказ.
func (m *Metrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderTransition учитывает смену статуса заказа.
func (m *Metrics) RecordOrderTransition(status string) {
	m.orderTransitions.WithLabelValues(status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// canonicalPath оставляет два первых сегмента пути, чтобы идентификаторы не попадали в метки.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return "/" + strings.Join(parts, "/")
}
